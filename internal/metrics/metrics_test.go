package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("/api/bookings", "200")
		IncBooking("create", "ok")
		IncBooking("create", "rejected")
		IncMembership("freeze")
		IncNotification("sent")
		IncBotUpdate("command")
		ObserveBotUpdate(0.05)
	})
}
