package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleSetJSON(t *testing.T) {
	set := RolesOf(RoleKeeper, RoleMaster)
	data, err := json.Marshal(set)
	require.NoError(t, err)
	require.JSONEq(t, `["MASTER","KEEPER"]`, string(data))

	var back RoleSet
	require.NoError(t, json.Unmarshal([]byte(`["KEEPER","MASTER"]`), &back))
	require.Equal(t, set, back)

	require.NoError(t, json.Unmarshal([]byte(`"borrower"`), &back))
	require.Equal(t, RolesOf(RoleBorrower), back)

	require.Error(t, json.Unmarshal([]byte(`["OWNER"]`), &back))

	data, err = json.Marshal(RoleSet(0))
	require.NoError(t, err)
	require.Equal(t, `[]`, string(data))
}

func TestRoleSet(t *testing.T) {
	s := RolesOf(RoleLibworker, RoleNone)
	require.True(t, s.Has(RoleLibworker))
	require.False(t, s.Has(RoleNone))
	require.False(t, s.Intersects(RolesOf(RoleKeeper, RoleMaster)))
	require.True(t, s.Intersects(RolesOf(RoleLibworker, RoleMaster)))
	require.Equal(t, "BORROWER,LIBWORKER", RolesOf(RoleLibworker, RoleBorrower).String())
}

func TestStepJSON(t *testing.T) {
	raw := `{"workflow_type":"RENEW","status":"RR","actor_role":"LIBWORKER","completed":true,
		"action_date":1700000000000,"next_step_index":[4],"last_step_index":2,"related_roles":["BORROWER","MASTER"]}`
	var s Step
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	require.Equal(t, StatusRenewRequested, s.Status)
	require.Equal(t, RoleLibworker, s.ActorRole)
	require.Equal(t, RolesOf(RoleBorrower, RoleMaster), s.RelatedRoles)
	require.Equal(t, WorkflowRenew, s.Status.WorkflowType())
}

func TestBorrowRequestRoles(t *testing.T) {
	br := BorrowRequest{
		BorrowerUser:  "alice",
		LibworkerUser: "bob",
		KeeperUsers:   []string{"bob", "carol"},
	}
	require.Equal(t, RolesOf(RoleLibworker, RoleKeeper), br.RolesOf("bob"))
	require.Equal(t, RolesOf(RoleBorrower), br.RolesOf("alice"))
	require.True(t, br.RolesOf("dave").Empty())
	require.Equal(t, []string{"alice", "bob", "carol"}, br.Participants())
}
