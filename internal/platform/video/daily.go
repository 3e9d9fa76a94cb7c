// Package video provisions meeting rooms for video consultations. Rooms are
// created through the Daily.co REST API when an API key is configured; when
// the provider is absent or errors, callers fall back to a deterministic
// public room URL keyed by the appointment ID.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RoomProvider creates a meeting room for an appointment and returns its URL.
type RoomProvider interface {
	CreateRoom(ctx context.Context, appointmentID string, expiresAt time.Time) (string, error)
}

// DailyClient provisions rooms via the Daily.co API.
type DailyClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewDailyClient creates a client for the Daily.co rooms API.
func NewDailyClient(apiKey, baseURL string) *DailyClient {
	return &DailyClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type createRoomRequest struct {
	Name       string         `json:"name"`
	Properties roomProperties `json:"properties"`
}

type roomProperties struct {
	EnableChat        bool  `json:"enable_chat"`
	EnableScreenshare bool  `json:"enable_screenshare"`
	Exp               int64 `json:"exp"`
	MaxParticipants   int   `json:"max_participants"`
	EnableKnocking    bool  `json:"enable_knocking"`
}

type createRoomResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CreateRoom creates a two-participant room named after the appointment. The
// room expires at expiresAt so stale links cannot be reused.
func (d *DailyClient) CreateRoom(ctx context.Context, appointmentID string, expiresAt time.Time) (string, error) {
	body, err := json.Marshal(createRoomRequest{
		Name: "appointment-" + appointmentID,
		Properties: roomProperties{
			EnableChat:        true,
			EnableScreenshare: true,
			Exp:               expiresAt.Unix(),
			MaxParticipants:   2,
			EnableKnocking:    false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal room request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/rooms", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build room request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("POST %s/rooms: %w", d.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("room provider returned status %d", resp.StatusCode)
	}

	var room createRoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		return "", fmt.Errorf("decode room response: %w", err)
	}
	if room.URL == "" {
		return "", fmt.Errorf("room provider returned empty url")
	}

	return room.URL, nil
}

// FallbackURL returns a deterministic public meeting URL for the appointment.
// The same appointment always yields the same room, so a repeated call-start
// lands doctor and patient in one place even without the provider.
func FallbackURL(base, appointmentID string) string {
	return fmt.Sprintf(
		"%s/wellbee-appointment-%s#config.prejoinPageEnabled=false&config.startWithVideoMuted=false&config.startWithAudioMuted=false&config.disableDeepLinking=true",
		base, appointmentID)
}
