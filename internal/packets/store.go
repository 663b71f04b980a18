package packets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"review-backend/internal/shared/telemetry"
)

// ErrNotFound is the absent-sentinel for a session id with no packet.
var ErrNotFound = errors.New("packet not found")

// ErrMalformed marks a packet file that is not valid JSON. The validator
// handles every shape problem past this point; only undecodable bytes
// surface here.
var ErrMalformed = errors.New("packet is not valid JSON")

// Session ids become file names; anything outside this set is rejected
// before touching the filesystem.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Store discovers and loads packet files from a directory. One JSON
// document per session, named <session-id>.json.
type Store struct {
	Dir string
}

// NewStore constructs a Store over the given directory.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// DiscoverSessions lists the session ids with a packet on disk. A missing
// or unreadable directory degrades to an empty list.
func (s *Store) DiscoverSessions() []string {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		telemetry.Warn("packets.discover_failed", map[string]any{
			"dir":   s.Dir,
			"error": err.Error(),
		})
		return []string{}
	}
	sessions := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if sessionIDPattern.MatchString(id) {
			sessions = append(sessions, id)
		}
	}
	return sessions
}

// LoadBySessionID reads and decodes the packet for a session. The id is
// restricted to a safe character set before being used in a path, so a
// traversal attempt reads as "not found" rather than escaping the
// directory.
func (s *Store) LoadBySessionID(id string) (map[string]any, error) {
	if !sessionIDPattern.MatchString(id) {
		return nil, fmt.Errorf("session id %q contains unsafe characters: %w", id, ErrNotFound)
	}
	path := filepath.Join(s.Dir, id+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read packet %s: %w", id, err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode packet %s: %w", id, ErrMalformed)
	}
	return raw, nil
}
