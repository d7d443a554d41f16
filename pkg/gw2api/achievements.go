package gw2api

import (
	"context"
	"strconv"
	"strings"

	"github.com/gw2sdk/gw2sdk-go/pkg/sdk"
)

const (
	achievementsPath = "/v2/achievements"

	// MaxIDsPerRequest is the most ids the API accepts in one ids query.
	MaxIDsPerRequest = 200
)

// Achievement is one whitelisted achievement.
type Achievement struct {
	ID            int64               `json:"id" yaml:"id"`
	Icon          string              `json:"icon,omitempty" yaml:"icon,omitempty"`
	Name          string              `json:"name" yaml:"name"`
	Description   string              `json:"description" yaml:"description"`
	Requirement   string              `json:"requirement" yaml:"requirement"`
	LockedText    string              `json:"locked_text" yaml:"locked_text"`
	Type          string              `json:"type" yaml:"type"`
	Flags         []string            `json:"flags" yaml:"flags"`
	Tiers         []AchievementTier   `json:"tiers" yaml:"tiers"`
	Prerequisites []int64             `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
	Rewards       []AchievementReward `json:"rewards,omitempty" yaml:"rewards,omitempty"`
	Bits          []AchievementBit    `json:"bits,omitempty" yaml:"bits,omitempty"`
	PointCap      *int                `json:"point_cap,omitempty" yaml:"point_cap,omitempty"`
}

// AchievementTier is a progress threshold and the points it grants.
type AchievementTier struct {
	Count  int `json:"count" yaml:"count"`
	Points int `json:"points" yaml:"points"`
}

// AchievementReward is granted on completion. Which fields are set depends on Type.
type AchievementReward struct {
	Type   string `json:"type" yaml:"type"`
	ID     int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Count  int    `json:"count,omitempty" yaml:"count,omitempty"`
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
}

// AchievementBit is one step of a collection achievement.
type AchievementBit struct {
	Type string `json:"type" yaml:"type"`
	ID   int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
}

// PublicAchievementsAPI reads achievement data that is not tied to an account,
// so no API key is needed. Only achievements obtained by at least one player
// are available.
type PublicAchievementsAPI struct {
	component
}

// NewPublicAchievementsAPI builds the component. It panics if client is nil.
func NewPublicAchievementsAPI(client Fetcher, opts ...Option) *PublicAchievementsAPI {
	return &PublicAchievementsAPI{component: newComponent("PublicAchievementsAPI", client, opts)}
}

// AchievementIDs lists the ids of all whitelisted achievements.
func (a *PublicAchievementsAPI) AchievementIDs(ctx context.Context, opts ...sdk.Option) (*sdk.Promise[[]int64], error) {
	a.log.DebugObj("fetching achievement ids", "path", achievementsPath)
	return get[[]int64](ctx, a.component, achievementsPath, opts)
}

// Achievement fetches a single achievement by id.
func (a *PublicAchievementsAPI) Achievement(ctx context.Context, id int64, opts ...sdk.Option) (*sdk.Promise[Achievement], error) {
	if id <= 0 {
		return nil, &InvalidParamError{Param: "id", Value: id, Reasons: []string{"must be positive"}}
	}
	path := achievementsPath + "/" + strconv.FormatInt(id, 10)
	a.log.DebugObj("fetching achievement", "path", path)
	return get[Achievement](ctx, a.component, path, opts)
}

// Achievements fetches up to MaxIDsPerRequest achievements in one request.
// Duplicate ids are sent once. Unknown ids are left out of the answer by the API.
func (a *PublicAchievementsAPI) Achievements(ctx context.Context, ids []int64, opts ...sdk.Option) (*sdk.Promise[[]Achievement], error) {
	query, err := idsQuery(ids)
	if err != nil {
		return nil, err
	}
	path := achievementsPath + "?ids=" + query
	a.log.DebugObj("fetching achievements", "path", path)
	return get[[]Achievement](ctx, a.component, path, opts)
}

func idsQuery(ids []int64) (string, error) {
	var reasons []string
	if len(ids) == 0 {
		reasons = append(reasons, "at least one id is required")
	}

	seen := make(map[int64]struct{}, len(ids))
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			reasons = append(reasons, "id "+strconv.FormatInt(id, 10)+" is not positive")
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	if len(parts) > MaxIDsPerRequest {
		reasons = append(reasons, "at most "+strconv.Itoa(MaxIDsPerRequest)+" ids are allowed per request")
	}

	if len(reasons) > 0 {
		return "", &InvalidParamError{Param: "ids", Value: ids, Reasons: reasons}
	}
	return strings.Join(parts, ","), nil
}
