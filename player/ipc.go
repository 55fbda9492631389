package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// ipcRequest is the JSON structure sent to mpv's IPC socket.
type ipcRequest struct {
	Command   []interface{} `json:"command"`
	RequestID int64         `json:"request_id"`
}

// ipcMessage is any line mpv writes back: a reply to a request, or a broadcast event.
// EntryID is set on start-file and end-file, and on file-loaded by newer mpv versions.
type ipcMessage struct {
	Event     string      `json:"event,omitempty"`
	Name      string      `json:"name,omitempty"`
	Data      interface{} `json:"data"`
	Error     string      `json:"error,omitempty"`
	RequestID int64       `json:"request_id,omitempty"`
	Reason    string      `json:"reason,omitempty"`
	FileError string      `json:"file_error,omitempty"`
	EntryID   int64       `json:"playlist_entry_id,omitempty"`
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = 2 * time.Second
)

// sendCommand sends a JSON-IPC command over a fresh connection, retrying transient failures.
func (m *MPV) sendCommand(command ...interface{}) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err != nil {
			lastErr = fmt.Errorf("connect: %w", err)
			continue
		}

		result, err := request(conn, bufio.NewReader(conn), m.nextID.Add(1), command)
		_ = conn.Close()
		if err == nil {
			return result, nil
		}
		if _, ok := err.(mpvError); ok {
			// mpv understood and rejected the command; retrying will not help
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command %v failed after %d attempts: %w", command[0], maxRetries, lastErr)
}

// mpvError is an error reported by mpv itself, such as "property unavailable".
type mpvError string

func (e mpvError) Error() string {
	return "mpv error: " + string(e)
}

// request writes one command and reads lines until the matching reply. mpv broadcasts
// events to every client, so unrelated lines are skipped.
func request(conn net.Conn, reader *bufio.Reader, id int64, command []interface{}) (interface{}, error) {
	payload, err := json.Marshal(ipcRequest{Command: command, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}
	defer conn.SetDeadline(time.Time{})

	// mpv requires newline-delimited JSON
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}

		var msg ipcMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			continue
		}
		if msg.Event != "" || msg.RequestID != id {
			continue
		}

		if msg.Error != "" && msg.Error != "success" {
			return nil, mpvError(msg.Error)
		}
		return msg.Data, nil
	}
}
