package authority_test

import (
	"testing"

	"github.com/agentstation/congressmap/pkg/authority"
	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want authority.Role
	}{
		{"official", authority.RoleOfficial},
		{" Institutional ", authority.RoleInstitutional},
		{"AGGREGATOR", authority.RoleAggregator},
		{"manual", authority.RoleManual},
		{"official-ish", authority.RoleUnknown},
		{"", authority.RoleUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, authority.ParseRole(tt.in))
		})
	}
}

func TestRankOrdering(t *testing.T) {
	roles := authority.Roles()
	for i := 1; i < len(roles); i++ {
		assert.Greater(t, roles[i-1].Rank(), roles[i].Rank(), "%s should outrank %s", roles[i-1], roles[i])
	}
}

func TestClampTrust(t *testing.T) {
	assert.Equal(t, authority.MinTrust, authority.ClampTrust(-5))
	assert.Equal(t, authority.MaxTrust, authority.ClampTrust(250))
	assert.Equal(t, authority.Trust(42), authority.ClampTrust(42))
}

func TestTableResolvePrecedence(t *testing.T) {
	table := authority.Defaults()
	source := authority.Trust(55)
	event := authority.Trust(120)

	assert.Equal(t, authority.Trust(90), table.Resolve(authority.RoleOfficial, nil, nil))
	assert.Equal(t, authority.Trust(55), table.Resolve(authority.RoleOfficial, &source, nil))
	assert.Equal(t, authority.MaxTrust, table.Resolve(authority.RoleOfficial, &source, &event))
}

func TestTableForMissingRole(t *testing.T) {
	table := authority.Table{authority.RoleUnknown: 3}
	assert.Equal(t, authority.Trust(3), table.For(authority.RoleOfficial))
	assert.Equal(t, authority.MinTrust, authority.Table{}.For(authority.RoleOfficial))
}

func TestTableList(t *testing.T) {
	list := authority.Defaults().List()
	assert.Len(t, list, 5)
	assert.Equal(t, authority.RoleManual, list[0].Role)
	assert.Equal(t, authority.RoleUnknown, list[len(list)-1].Role)
}
