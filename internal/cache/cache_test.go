package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamup-platform/teamup-cli/internal/model"
	"github.com/teamup-platform/teamup-cli/tests/testutil"
)

func TestCourseSnapshotRoundTrip(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	minutes := 90
	saved := []model.Course{
		{ID: "c2", Title: "Go Basics", Progress: 40, EstimatedMinutes: &minutes},
		{ID: "c1", Title: "SQL", Progress: 100},
	}
	require.NoError(t, c.SaveCourses(ctx, "u1", saved))

	got, err := c.Courses(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c2", got[0].ID, "fetch order preserved")
	assert.Equal(t, 40.0, got[0].Progress)
	require.NotNil(t, got[0].EstimatedMinutes)
	assert.Equal(t, 90, *got[0].EstimatedMinutes)

	// A later save replaces the snapshot wholesale.
	require.NoError(t, c.SaveCourses(ctx, "u1", saved[:1]))
	got, err = c.Courses(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCoursesScopedPerUser(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SaveCourses(ctx, "u1", []model.Course{{ID: "c1"}}))
	require.NoError(t, c.SaveCourses(ctx, "u2", []model.Course{{ID: "c2"}, {ID: "c3"}}))

	got, err := c.Courses(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)

	got, err = c.Courses(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNotificationSnapshotRoundTrip(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	items := []model.Notification{
		{ID: "n1", Title: "Graded", EntityType: model.EntityAssignment, EntityID: "a1"},
		{ID: "n2", Title: "New chapter", EntityType: model.EntityCourse, EntityID: "c1", IsRead: true},
	}
	require.NoError(t, c.SaveNotifications(ctx, "u1", items, 1))

	got, unread, err := c.Notifications(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "n1", got[0].ID)
	assert.Equal(t, model.EntityAssignment, got[0].EntityType)
	assert.True(t, got[1].IsRead)
	assert.Equal(t, 1, unread)

	// Replacing with an empty inbox zeroes both.
	require.NoError(t, c.SaveNotifications(ctx, "u1", nil, 0))
	got, unread, err = c.Notifications(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, unread)
}

func TestLastSync(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	ts, err := c.LastSync(ctx, "u1", "courses")
	require.NoError(t, err)
	assert.True(t, ts.IsZero(), "no snapshot yet")

	require.NoError(t, c.SaveCourses(ctx, "u1", []model.Course{{ID: "c1"}}))

	ts, err = c.LastSync(ctx, "u1", "courses")
	require.NoError(t, err)
	assert.False(t, ts.IsZero())
}

func TestPurgeDropsAllUserSnapshots(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SaveCourses(ctx, "u1", []model.Course{{ID: "c1"}}))
	require.NoError(t, c.SaveNotifications(ctx, "u1",
		[]model.Notification{{ID: "n1"}}, 1))
	require.NoError(t, c.SaveCourses(ctx, "u2", []model.Course{{ID: "c2"}}))

	require.NoError(t, c.Purge(ctx, "u1"))

	courses, err := c.Courses(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, courses)

	items, unread, err := c.Notifications(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, unread)

	ts, err := c.LastSync(ctx, "u1", "courses")
	require.NoError(t, err)
	assert.True(t, ts.IsZero())

	// Other users untouched.
	courses, err = c.Courses(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}
