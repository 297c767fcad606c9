// Package strava implements the OAuth token lifecycle and webhook handling
// for Strava activity sync, grounded on golang.org/x/oauth2 (an indirect
// dependency of the teacher's go.mod, pulled in by pocketbase's own Google
// OAuth integration) rather than hand-rolling the token exchange.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/mmeyer/hotpot/internal/activity"
	"github.com/mmeyer/hotpot/internal/config"
	"github.com/mmeyer/hotpot/internal/geo"
	"github.com/mmeyer/hotpot/internal/herr"
	"github.com/mmeyer/hotpot/internal/store"
)

// tokenRefreshMargin is the safety margin subtracted from a token's expiry
// before it is considered still valid.
const tokenRefreshMargin = 60 * time.Second

var endpoint = oauth2.Endpoint{
	AuthURL:  "https://www.strava.com/oauth/authorize",
	TokenURL: "https://www.strava.com/oauth/token",
}

// Client talks to the Strava API on behalf of one athlete, refreshing
// tokens as needed and persisting them to the store.
type Client struct {
	oauth *oauth2.Config
	store *store.Database
	http  *http.Client
}

// NewClient builds a Strava client from environment-sourced credentials.
func NewClient(env config.StravaEnv, db *store.Database) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     env.ClientID,
			ClientSecret: env.ClientSecret,
			Endpoint:     endpoint,
		},
		store: db,
		http:  http.DefaultClient,
	}
}

// AuthCodeURL builds the Strava OAuth consent URL an athlete visits to
// begin linking their account, requesting activity read scope.
func AuthCodeURL(env config.StravaEnv, redirectURL string) string {
	oauthCfg := &oauth2.Config{
		ClientID:     env.ClientID,
		ClientSecret: env.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{"activity:read_all"},
	}
	return oauthCfg.AuthCodeURL("state", oauth2.ApprovalForce)
}

// ExchangeCode trades an OAuth authorization code for tokens and persists
// them against the athlete ID embedded in the response.
func (c *Client) ExchangeCode(ctx context.Context, code string) error {
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return herr.Wrap(herr.Upstream, err, "exchange strava oauth code")
	}
	athleteID, ok := tok.Extra("athlete").(map[string]any)
	if !ok {
		return herr.New(herr.Upstream, "strava token response missing athlete")
	}
	idFloat, _ := athleteID["id"].(float64)

	return c.store.SaveStravaToken(store.StravaToken{
		AthleteID:    int64(idFloat),
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	})
}

// GetToken returns a valid access token for the athlete, refreshing it
// first if it is within tokenRefreshMargin of expiry.
func (c *Client) GetToken(ctx context.Context, athleteID int64) (string, error) {
	tok, err := c.store.LoadStravaToken(athleteID)
	if err != nil {
		return "", err
	}
	if time.Now().Add(tokenRefreshMargin).Before(tok.ExpiresAt) {
		return tok.AccessToken, nil
	}
	return c.refreshToken(ctx, tok)
}

func (c *Client) refreshToken(ctx context.Context, tok store.StravaToken) (string, error) {
	src := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: tok.RefreshToken})
	refreshed, err := src.Token()
	if err != nil {
		return "", herr.Wrap(herr.Upstream, err, "refresh strava token")
	}
	if err := c.store.SaveStravaToken(store.StravaToken{
		AthleteID:    tok.AthleteID,
		AccessToken:  refreshed.AccessToken,
		RefreshToken: refreshed.RefreshToken,
		ExpiresAt:    refreshed.Expiry,
	}); err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// SummaryActivity is the subset of Strava's activity API response this
// integration consumes.
type SummaryActivity struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	StartDate string `json:"start_date"`
	Map       struct {
		Polyline string `json:"polyline"`
	} `json:"map"`
}

// GetActivity fetches one activity's summary from the Strava API.
func (c *Client) GetActivity(ctx context.Context, athleteID, activityID int64) (*SummaryActivity, error) {
	token, err := c.GetToken(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("https://www.strava.com/api/v3/activities/%d", activityID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, herr.Wrap(herr.Internal, err, "build strava request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, herr.Wrap(herr.Upstream, err, "call strava api")
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, herr.Newf(herr.Upstream, "strava api returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, herr.Wrap(herr.Upstream, err, "read strava response")
	}
	var act SummaryActivity
	if err := json.Unmarshal(body, &act); err != nil {
		return nil, herr.Wrap(herr.Upstream, err, "decode strava activity")
	}
	return &act, nil
}

// ToRawActivity converts a fetched Strava activity into a RawActivity,
// decoding its encoded polyline. The RawActivity carries no storage key;
// callers store it under ActivityKey(act.ID).
func ToRawActivity(act *SummaryActivity) *activity.RawActivity {
	ra := &activity.RawActivity{
		Properties: map[string]any{"activity_type": act.Type, "source": "strava"},
	}
	if act.Name != "" {
		ra.Title = act.Name
		ra.HasTitle = true
	}
	if ts, err := time.Parse(time.RFC3339, act.StartDate); err == nil {
		ra.StartTime = ts
		ra.HasStart = true
	}

	points := DecodePolyline(act.Map.Polyline)
	line := make(activity.LineString, 0, len(points))
	for _, p := range points {
		line = append(line, activity.TrackPoint{LngLat: geo.LngLat{Lng: p[0], Lat: p[1]}})
	}
	if len(line) > 0 {
		ra.Tracks = []activity.LineString{line}
	}
	return ra
}

// ActivityKey formats the storage key for a Strava-sourced activity.
func ActivityKey(activityID int64) string {
	return fmt.Sprintf("strava:%d", activityID)
}
