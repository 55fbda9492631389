package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/clipshuffle/clipshuffle/log"
)

// pauseObserverID tags the observe_property registration for "pause".
const pauseObserverID = 1

// listen opens the persistent event connection. mpv only reports property changes to the
// client that registered the observer, so the registration goes over this same connection.
func (m *MPV) listen() error {
	conn, err := net.Dial("unix", m.socketPath)
	if err != nil {
		return fmt.Errorf("event connection: %w", err)
	}

	reader := bufio.NewReaderSize(conn, 64*1024)
	if _, err := request(conn, reader, m.nextID.Add(1), []interface{}{"observe_property", pauseObserverID, "pause"}); err != nil {
		_ = conn.Close()
		return fmt.Errorf("observe pause: %w", err)
	}

	m.conn = conn
	go m.readLoop(reader)

	log.Debugf("mpv event listener started on %s", m.socketPath)
	return nil
}

// readLoop forwards events until the connection closes, then closes the events channel.
func (m *MPV) readLoop(reader *bufio.Reader) {
	defer close(m.events)

	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			var msg ipcMessage
			if jsonErr := json.Unmarshal(line, &msg); jsonErr == nil && msg.Event != "" {
				m.dispatch(msg)
			}
		}

		if err != nil {
			select {
			case <-m.done:
			default:
				if !errors.Is(err, io.EOF) {
					log.Warnf("mpv event connection: %v", err)
				} else {
					log.Warnf("mpv closed the event connection")
				}
			}
			return
		}
	}
}

func (m *MPV) dispatch(msg ipcMessage) {
	switch msg.Event {
	case "start-file":
		m.fileStarted(msg.EntryID)
	case "file-loaded":
		if source, ok := m.finishLoad(msg.EntryID); ok {
			m.emit(Event{Kind: EventLoaded, Source: source})
		}
	case "property-change":
		if event, ok := pauseEvent(msg); ok {
			m.emit(event)
		}
	case "end-file":
		event, ok := endFileEvent(msg)
		if !ok {
			return
		}
		source, current := m.sourceOf(msg.EntryID)
		if !current {
			log.Debugf("ignoring %s for replaced playlist entry %d", event.Kind, msg.EntryID)
			return
		}
		event.Source = source
		m.emit(event)
	}
}

func (m *MPV) emit(event Event) {
	select {
	case m.events <- event:
	case <-m.done:
	}
}

// endFileEvent maps an end-file notification. Files ended by a replace, stop or quit
// produce no event.
func endFileEvent(msg ipcMessage) (Event, bool) {
	switch msg.Reason {
	case "eof":
		return Event{Kind: EventEndOfStream}, true
	case "error":
		debug := msg.FileError
		if debug == "" {
			debug = "unknown error"
		}
		return Event{Kind: EventError, Message: "playback failed", Debug: debug}, true
	default:
		return Event{}, false
	}
}

func pauseEvent(msg ipcMessage) (Event, bool) {
	if msg.Name != "pause" {
		return Event{}, false
	}
	paused, ok := msg.Data.(bool)
	if !ok {
		return Event{}, false
	}
	return Event{Kind: EventPause, Paused: paused}, true
}
