// Package sdk turns pending API requests into promises.
//
// A request settles into exactly one outcome: Successful (status 200 with a
// decodable body), APIError (any other status) or NoAnswer (no response at
// all, including timeouts). Callers subscribe with OnSuccess, OnError and
// OnNoAnswer, or block with Join and inspect Response:
//
//	promise, err := achievements.AchievementIDs(ctx)
//	if err != nil {
//		return err
//	}
//	promise.
//		OnSuccess(func(ids []int64) { log.Printf("%d achievements", len(ids)) }).
//		OnError(func(e sdk.ErrorData) { log.Printf("api error: %s", e) }).
//		OnNoAnswer(func() { log.Print("no answer") })
//	if err := promise.Join(); err != nil {
//		return err // cancelled, or the body did not match the requested type
//	}
//
// Outcomes without a registered callback are logged as warnings.
package sdk
