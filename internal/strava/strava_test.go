package strava

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodePolylineKnownExample(t *testing.T) {
	// The canonical Google polyline algorithm example: decodes to
	// (38.5,-120.2), (40.7,-120.95), (43.252,-126.453).
	points := DecodePolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	assert := assert.New(t)
	assert.Len(points, 3)
	assert.InDelta(-120.2, points[0][0], 1e-3)
	assert.InDelta(38.5, points[0][1], 1e-3)
	assert.InDelta(-126.453, points[2][0], 1e-3)
	assert.InDelta(43.252, points[2][1], 1e-3)
}

func TestVerifyChallenge(t *testing.T) {
	assert.True(t, VerifyChallenge("subscribe", "secret", "secret"))
	assert.False(t, VerifyChallenge("subscribe", "wrong", "secret"))
	assert.False(t, VerifyChallenge("unsubscribe", "secret", "secret"))
}

func TestActivityKey(t *testing.T) {
	assert.Equal(t, "strava:123", ActivityKey(123))
}

func TestWebhookEventIsActivityEvent(t *testing.T) {
	e := WebhookEvent{ObjectType: "activity"}
	assert.True(t, e.IsActivityEvent())
	e.ObjectType = "athlete"
	assert.False(t, e.IsActivityEvent())
}
