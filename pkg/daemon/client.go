package daemon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/teslashibe/reachy-ar/internal/httpc"
)

// Client talks to the robot daemon's HTTP API at a base URL.
type Client struct {
	baseURL string
	http    *http.Client // general operations
	stream  *http.Client // short-timeout client for set_target
}

// NewClient creates a daemon client for the given base URL,
// e.g. "http://192.168.68.80:8000".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    httpc.Client,
		stream:  httpc.ControlClient,
	}
}

// fullBodyTarget is the daemon's combined target schema, shared by the
// goto and set_target endpoints. Nil fields mean "leave unchanged".
type fullBodyTarget struct {
	HeadPose *Pose       `json:"target_head_pose"`
	Antennas *[2]float64 `json:"target_antennas"`
	BodyYaw  *float64    `json:"target_body_yaw"`
}

// Status returns the daemon state string.
func (c *Client) Status() (string, error) {
	resp, err := c.http.Get(c.baseURL + "/api/daemon/status")
	if err != nil {
		return "", fmt.Errorf("daemon status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError("status", resp)
	}

	var status struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return "", fmt.Errorf("failed to decode daemon status: %w", err)
	}
	return status.State, nil
}

// Reachable reports whether the daemon answers its status endpoint.
// Never returns an error; intended for startup checks and dashboards.
func (c *Client) Reachable() bool {
	_, err := c.Status()
	return err == nil
}

// SetTarget sends an immediate combined target. No daemon-side
// interpolation; meant to be streamed at control-loop rate.
func (c *Client) SetTarget(pose Pose, antennas *[2]float64, bodyYaw *float64) error {
	body := fullBodyTarget{
		HeadPose: &pose,
		Antennas: antennas,
		BodyYaw:  bodyYaw,
	}
	_, err := c.post(c.stream, "set_target", "/api/move/set_target", body)
	return err
}

// Goto starts an interpolated move toward the given pose and returns
// the daemon-side task id.
func (c *Client) Goto(pose Pose, bodyYaw *float64, duration float64, mode Interpolation) (MoveTask, error) {
	body := struct {
		fullBodyTarget
		Duration      float64       `json:"duration"`
		Interpolation Interpolation `json:"interpolation_mode"`
	}{
		fullBodyTarget: fullBodyTarget{HeadPose: &pose, BodyYaw: bodyYaw},
		Duration:       duration,
		Interpolation:  mode,
	}
	data, err := c.post(c.http, "goto", "/api/move/goto", body)
	if err != nil {
		return MoveTask{}, err
	}
	return decodeTask("goto", data)
}

// PlayRecordedMove starts playback of a dataset-scoped recorded move and
// returns the daemon-side task id. Dataset and move names may contain
// path separators and are percent-encoded into the route.
func (c *Client) PlayRecordedMove(dataset, move string) (MoveTask, error) {
	path := fmt.Sprintf("/api/move/play/recorded-move-dataset/%s/%s",
		url.PathEscape(dataset), url.PathEscape(move))
	data, err := c.post(c.http, "play_recorded_move", path, nil)
	if err != nil {
		return MoveTask{}, err
	}
	return decodeTask("play_recorded_move", data)
}

// ListRecordedMoves returns the ordered move names in a dataset.
func (c *Client) ListRecordedMoves(dataset string) ([]string, error) {
	path := "/api/move/recorded-move-datasets/" + url.PathEscape(dataset)
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("list recorded moves request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("list_recorded_moves", resp)
	}

	var moves []string
	if err := json.NewDecoder(resp.Body).Decode(&moves); err != nil {
		return nil, fmt.Errorf("failed to decode recorded moves: %w", err)
	}
	return moves, nil
}

// StopMove requests a stop of the given running task. Best-effort: the
// daemon answers 200 even when the task already finished.
func (c *Client) StopMove(id uuid.UUID) error {
	body := MoveTask{UUID: id}
	_, err := c.post(c.http, "stop_move", "/api/move/stop", body)
	return err
}

// RunningMoves returns the ids of all currently running daemon tasks.
func (c *Client) RunningMoves() ([]uuid.UUID, error) {
	resp, err := c.http.Get(c.baseURL + "/api/move/running")
	if err != nil {
		return nil, fmt.Errorf("running moves request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("running_moves", resp)
	}

	var tasks []MoveTask
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		return nil, fmt.Errorf("failed to decode running moves: %w", err)
	}
	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.UUID
	}
	return ids, nil
}

// post sends a JSON body and returns the raw 200 response body.
func (c *Client) post(client *http.Client, op, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	resp, err := client.Post(c.baseURL+path, "application/json", reader)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(op, resp)
	}
	return io.ReadAll(resp.Body)
}

// decodeTask parses a {"uuid": "..."} task response.
func decodeTask(op string, data []byte) (MoveTask, error) {
	var task MoveTask
	if err := json.Unmarshal(data, &task); err != nil {
		return MoveTask{}, fmt.Errorf("failed to decode %s task id: %w", op, err)
	}
	return task, nil
}

// apiError drains a non-200 response into an *APIError.
func apiError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
	return &APIError{Op: op, Status: resp.StatusCode, Body: string(body)}
}
