package publishers

import "github.com/gw2sdk/gw2sdk-go/internal/domain"

func testEvent() Event {
	return NewEvent("achievement-ids", "Achievement ids",
		domain.NewSnapshot("achievement-ids", "/v2/achievements", "successful", 200, "[1,2,3]"))
}
