package player

import (
	"crypto/rand"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/clipshuffle/clipshuffle/constant"
	"github.com/clipshuffle/clipshuffle/log"
	"github.com/clipshuffle/clipshuffle/where"
	"github.com/samber/mo"
)

const (
	socketWaitRetries = 20
	socketWaitDelay   = 150 * time.Millisecond
	quitTimeout       = 3 * time.Second
	eventBuffer       = 16
)

// Options configure the mpv process.
type Options struct {
	Binary     string
	Fullscreen bool
	Mute       bool
	ExtraArgs  []string
}

type pendingSeek struct {
	seconds float64
	flags   SeekFlags
}

// MPV implements Backend using mpv's JSON-IPC protocol.
type MPV struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when the mpv process exits

	mu     sync.Mutex // serializes IPC requests
	nextID atomic.Int64

	conn      net.Conn
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once

	// Playlist entry ids are assigned by mpv in increasing order. entry is the id of the
	// latest loadfile, 0 until its reply arrives or when mpv does not report one. Every
	// id below floor belongs to a file that was replaced. started is the id from the
	// latest start-file.
	loadMu  sync.Mutex
	loading bool
	pending mo.Option[pendingSeek]
	target  string
	entry   int64
	floor   int64
	started int64
}

func newMPV(socketPath string) *MPV {
	return &MPV{
		socketPath: socketPath,
		events:     make(chan Event, eventBuffer),
		done:       make(chan struct{}),
		pending:    mo.None[pendingSeek](),
	}
}

// NewMPV starts an idle mpv process and connects to its IPC socket.
// Every failure wraps ErrBackendInit.
func NewMPV(opts Options) (*MPV, error) {
	binary := opts.Binary
	if binary == "" {
		binary = "mpv"
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found: %w", ErrBackendInit, binary, err)
	}

	socketPath, err := newSocketPath()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendInit, err)
	}

	m := newMPV(socketPath)
	m.cmd = exec.Command(path, buildArgs(opts, socketPath)...)

	// Detach from the parent process group so terminal signals reach us first.
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start mpv: %w", ErrBackendInit, err)
	}
	log.Infof("started %s (pid %d) on %s", path, m.cmd.Process.Pid, socketPath)

	// reap the process to prevent zombies
	m.exited = make(chan struct{})
	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(); err != nil {
		m.kill()
		return nil, fmt.Errorf("%w: %w", ErrBackendInit, err)
	}

	if err := m.listen(); err != nil {
		m.kill()
		return nil, fmt.Errorf("%w: %w", ErrBackendInit, err)
	}

	return m, nil
}

func newSocketPath() (string, error) {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("generate socket name: %w", err)
	}
	return filepath.Join(where.Temp(), fmt.Sprintf("%s-%x.sock", constant.App, randomBytes)), nil
}

// buildArgs keeps the user's mpv.conf in charge of output and decoding; only the
// window, audio and IPC flags are set.
func buildArgs(opts Options, socketPath string) []string {
	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--idle=yes",
		"--force-window=yes",
		"--keep-open=no",
		"--input-ipc-server=" + socketPath,
		"--title=" + constant.App,
	}

	if opts.Fullscreen {
		args = append(args, "--fullscreen=yes")
	}
	if opts.Mute {
		args = append(args, "--mute=yes")
	}

	for _, arg := range opts.ExtraArgs {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		if !strings.HasPrefix(arg, "--") {
			log.Warnf("ignoring mpv argument %q: not an option", arg)
			continue
		}
		args = append(args, arg)
	}

	return args
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// SetSource implements Backend.
func (m *MPV) SetSource(uri string) error {
	target, err := sanitizeMediaTarget(uri)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	m.loadMu.Lock()
	m.loading = true
	m.pending = mo.None[pendingSeek]()
	m.target = target
	m.floor = max(m.entry, m.started, m.floor) + 1
	m.entry = 0
	m.loadMu.Unlock()

	data, err := m.sendCommand("loadfile", target, "replace")
	if err != nil {
		m.loadMu.Lock()
		m.loading = false
		m.loadMu.Unlock()
		return fmt.Errorf("load %s: %w", target, err)
	}

	if id := playlistEntryID(data); id > 0 {
		m.loadMu.Lock()
		m.entry = id
		m.loadMu.Unlock()
	}
	return nil
}

// playlistEntryID extracts the id from a loadfile reply. Older mpv versions reply with no data.
func playlistEntryID(data interface{}) int64 {
	fields, ok := data.(map[string]interface{})
	if !ok {
		return 0
	}
	id, ok := fields["playlist_entry_id"].(float64)
	if !ok {
		return 0
	}
	return int64(id)
}

// currentLocked reports whether playlist entry id belongs to the latest SetSource.
// Events without an id cannot be told apart and are trusted.
func (m *MPV) currentLocked(id int64) bool {
	switch {
	case id == 0:
		return true
	case m.entry > 0:
		return id == m.entry
	default:
		return id >= m.floor
	}
}

// Seek implements Backend. mpv rejects seeks before the file is loaded, so those are
// held until the file-loaded event.
func (m *MPV) Seek(seconds float64, flags SeekFlags) error {
	m.loadMu.Lock()
	if m.loading {
		m.pending = mo.Some(pendingSeek{seconds: seconds, flags: flags})
		m.loadMu.Unlock()
		return nil
	}
	m.loadMu.Unlock()

	return m.seek(seconds, flags)
}

func (m *MPV) seek(seconds float64, flags SeekFlags) error {
	mode := "absolute+keyframes"
	if flags.Has(SeekAccurate) {
		mode = "absolute+exact"
	}

	_, err := m.sendCommand("seek", seconds, mode)
	if err != nil {
		return fmt.Errorf("seek to %.3fs: %w", seconds, err)
	}
	return nil
}

// finishLoad handles file-loaded for playlist entry id, or for the last started entry
// when mpv did not name one. The pending seek is applied only when the entry is current.
func (m *MPV) finishLoad(id int64) (source string, ok bool) {
	m.loadMu.Lock()
	if id == 0 {
		id = m.started
	}
	if !m.currentLocked(id) {
		m.loadMu.Unlock()
		log.Debugf("ignoring file-loaded for replaced playlist entry %d", id)
		return "", false
	}
	m.loading = false
	pending := m.pending
	m.pending = mo.None[pendingSeek]()
	source = m.target
	m.loadMu.Unlock()

	if p, ok := pending.Get(); ok && p.seconds > 0 {
		if err := m.seek(p.seconds, p.flags); err != nil {
			log.Warnf("deferred %v", err)
		}
	}
	return source, true
}

// sourceOf returns the uri of playlist entry id when it is current.
func (m *MPV) sourceOf(id int64) (string, bool) {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()
	if !m.currentLocked(id) {
		return "", false
	}
	return m.target, true
}

func (m *MPV) fileStarted(id int64) {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()
	if id > m.started {
		m.started = id
	}
}

// SetState implements Backend.
func (m *MPV) SetState(state State) error {
	var err error
	switch state {
	case Playing:
		_, err = m.sendCommand("set_property", "pause", false)
	case Paused:
		_, err = m.sendCommand("set_property", "pause", true)
	case Stopped:
		m.loadMu.Lock()
		m.loading = false
		m.pending = mo.None[pendingSeek]()
		m.loadMu.Unlock()
		_, err = m.sendCommand("stop")
	default:
		return fmt.Errorf("unsupported state %s", state)
	}

	if err != nil {
		return fmt.Errorf("set state %s: %w", state, err)
	}
	return nil
}

// Events implements Backend.
func (m *MPV) Events() <-chan Event {
	return m.events
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

// Close implements Backend. It asks mpv to quit, killing it if it does not.
func (m *MPV) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)

		if m.cmd != nil {
			_, _ = m.sendCommand("quit")

			select {
			case <-m.exited:
			case <-time.After(quitTimeout):
				log.Warnf("mpv did not quit in %s, killing it", quitTimeout)
				_ = killProcess(m.cmd)
			}
		}

		if m.conn != nil {
			_ = m.conn.Close()
		}

		if m.cmd != nil {
			_ = os.Remove(m.socketPath)
		}
	})
	return nil
}

func (m *MPV) kill() {
	if m.cmd == nil || m.cmd.Process == nil {
		return
	}
	select {
	case <-m.exited:
	default:
		log.Warnf("killing mpv: socket never became ready")
		_ = killProcess(m.cmd)
	}
	_ = os.Remove(m.socketPath)
}

// sanitizeMediaTarget only lets local files through, as file URIs or plain paths,
// and keeps anything that could be parsed as an mpv flag out.
func sanitizeMediaTarget(target string) (string, error) {
	t := strings.TrimSpace(target)
	if t == "" {
		return "", fmt.Errorf("empty target")
	}

	if strings.ContainsAny(t, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in target")
	}

	if strings.HasPrefix(t, "-") {
		return "", fmt.Errorf("target must not start with '-' (looks like a flag)")
	}

	if strings.Contains(t, "://") {
		u, err := url.Parse(t)
		if err != nil {
			return "", fmt.Errorf("invalid URI: %w", err)
		}
		if !strings.EqualFold(u.Scheme, "file") {
			return "", fmt.Errorf("unsupported URI scheme: %s", u.Scheme)
		}
		return t, nil
	}

	return filepath.Clean(t), nil
}
