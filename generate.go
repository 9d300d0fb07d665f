//go:generate gomarkdoc -e -f github -o README.md . --repository.url https://github.com/agentstation/congressmap --repository.default-branch master --repository.path /

// Package congressmap collects anesthesiology congress dates and deadlines
// from independent sources, reconciles them into one deduplicated feed and
// keeps a ledger of every event it has ever observed.
package congressmap
