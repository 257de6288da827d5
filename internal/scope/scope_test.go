package scope

import (
	"testing"
	"time"

	"github.com/kzmshx/taskhub/internal/models"
	"github.com/stretchr/testify/require"
)

func TestTaskScope_AdminUnrestricted(t *testing.T) {
	e := TaskScope(models.RoleAdmin, 1, nil, TaskFilter{})
	require.Nil(t, e)
}

func TestTaskScope_MemberRestriction(t *testing.T) {
	e := TaskScope(models.RoleMember, 42, nil, TaskFilter{})

	cond, ok := e.(Cond)
	require.True(t, ok)
	require.Equal(t, "tasks.assignee_id", cond.Column)
	require.Equal(t, OpEq, cond.Op)
	require.Equal(t, uint64(42), cond.Value)
}

func TestTaskScope_ManagerRestriction(t *testing.T) {
	e := TaskScope(models.RoleManager, 42, []uint64{1, 2}, TaskFilter{})

	or, ok := e.(Or)
	require.True(t, ok)
	require.Len(t, or.Exprs, 2)

	in, ok := or.Exprs[0].(In)
	require.True(t, ok)
	require.Equal(t, "tasks.project_id", in.Column)
	require.Equal(t, []uint64{1, 2}, in.IDs)

	cond, ok := or.Exprs[1].(Cond)
	require.True(t, ok)
	require.Equal(t, "tasks.assignee_id", cond.Column)
	require.Equal(t, uint64(42), cond.Value)
}

// The manager restriction keeps its In branch even when the owned-project set
// is empty, so the disjunction narrows to assigned tasks instead of vanishing.
func TestTaskScope_ManagerWithNoOwnedProjects(t *testing.T) {
	e := TaskScope(models.RoleManager, 42, nil, TaskFilter{})

	or, ok := e.(Or)
	require.True(t, ok)

	in, ok := or.Exprs[0].(In)
	require.True(t, ok)
	require.Empty(t, in.IDs)
}

func TestTaskScope_FiltersConjoinedWithRestriction(t *testing.T) {
	status := models.TaskStatusDone
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	e := TaskScope(models.RoleMember, 42, nil, TaskFilter{
		Status:  &status,
		Search:  "deploy",
		DueFrom: &from,
	})

	and, ok := e.(And)
	require.True(t, ok)
	require.Len(t, and.Exprs, 4)

	// A search Or sits inside the conjunction, never flattened into it
	var foundOr bool
	for _, sub := range and.Exprs {
		if or, isOr := sub.(Or); isOr {
			foundOr = true
			require.Len(t, or.Exprs, 2)
		}
	}
	require.True(t, foundOr)
}

func TestProjectScope(t *testing.T) {
	t.Run("admin unrestricted", func(t *testing.T) {
		require.Nil(t, ProjectScope(models.RoleAdmin, 1, nil, ProjectFilter{}))
	})

	t.Run("member limited to assigned projects", func(t *testing.T) {
		e := ProjectScope(models.RoleMember, 42, []uint64{3}, ProjectFilter{})

		in, ok := e.(In)
		require.True(t, ok)
		require.Equal(t, "projects.id", in.Column)
		require.Equal(t, []uint64{3}, in.IDs)
	})

	t.Run("member with nothing in scope matches nothing", func(t *testing.T) {
		e := ProjectScope(models.RoleMember, 42, nil, ProjectFilter{})

		in, ok := e.(In)
		require.True(t, ok)
		require.Empty(t, in.IDs)
	})

	t.Run("manager sees owned or assigned", func(t *testing.T) {
		e := ProjectScope(models.RoleManager, 42, []uint64{3}, ProjectFilter{})

		or, ok := e.(Or)
		require.True(t, ok)
		require.Len(t, or.Exprs, 2)

		cond, ok := or.Exprs[0].(Cond)
		require.True(t, ok)
		require.Equal(t, "projects.owner_id", cond.Column)
		require.Equal(t, uint64(42), cond.Value)
	})
}

func TestConj(t *testing.T) {
	require.Nil(t, Conj())
	require.Nil(t, Conj(nil, nil))

	single := Cond{Column: "a", Op: OpEq, Value: 1}
	require.Equal(t, Expr(single), Conj(nil, single))

	combined := Conj(single, Cond{Column: "b", Op: OpEq, Value: 2})
	and, ok := combined.(And)
	require.True(t, ok)
	require.Len(t, and.Exprs, 2)
}

func TestParseSort(t *testing.T) {
	require.Equal(t, Sort{Column: "due_date", Desc: false}, ParseSort("due_date", "asc"))
	require.Equal(t, Sort{Column: "priority", Desc: true}, ParseSort("priority", "desc"))
	require.Equal(t, Sort{Column: "updated_at", Desc: true}, ParseSort("updated_at", ""))

	// Unknown fields fall back to created_at descending instead of erroring
	require.Equal(t, Sort{Column: "created_at", Desc: true}, ParseSort("password_hash", "asc"))
	require.Equal(t, Sort{Column: "created_at", Desc: true}, ParseSort("", ""))
}
