// Package session implements the incremental-compilation fragment
// database: per-file declaration hashing, transitive dirty propagation,
// and the artifact cache that lets repeated transpilation touch only
// changed fragments.
package session

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/oxhq/autolang/internal/fragstore"
	"github.com/oxhq/autolang/internal/lexer"
	"github.com/oxhq/autolang/internal/parser"
)

// Stats summarizes one transpile-with-session call in the exact format
// callers parse to verify cache behaviour.
type Stats struct {
	Total int
	Dirty int
}

func (s Stats) String() string {
	return fmt.Sprintf("[trans] %d total, %d dirty", s.Total, s.Dirty)
}

// Fragment is one declaration's cache entry for one emit target.
type Fragment struct {
	ID           string
	FileID       string
	DeclPath     string
	TokenHash    string
	Target       string
	Source       string
	Artifact     string
	Dependencies []string
	Dirty        bool
}

// Session holds the in-memory fragment map plus an optional durable
// backing store. With no store attached, the cache lives only as long as
// the Session value, same dirty/clean bookkeeping either way.
type Session struct {
	store     *fragstore.Store
	fileIDs   map[string]string
	fragments map[string]*Fragment
}

// New returns a session with no durable backing store.
func New() *Session {
	return &Session{fileIDs: make(map[string]string), fragments: make(map[string]*Fragment)}
}

// NewWithStore returns a session whose fragment cache is mirrored into
// store, surviving process restarts.
func NewWithStore(store *fragstore.Store) *Session {
	s := New()
	s.store = store
	return s
}

// DB exposes the backing store for introspection, nil if none is attached.
func (s *Session) DB() *fragstore.Store { return s.store }

// Fragments lists every fragment currently known to the session.
func (s *Session) Fragments() []Fragment {
	out := make([]Fragment, 0, len(s.fragments))
	for _, f := range s.fragments {
		out = append(out, *f)
	}
	return out
}

// FileID exposes the same per-path fragment-cache identity fileID
// computes internally, for callers that need to query the backing store
// directly (e.g. to diff a file's previously cached artifacts).
func (s *Session) FileID(path string) string { return s.fileID(path) }

func (s *Session) fileID(path string) string {
	if id, ok := s.fileIDs[path]; ok {
		return id
	}
	sum := sha1.Sum([]byte(path))
	id := hex.EncodeToString(sum[:])[:12]
	s.fileIDs[path] = id
	return id
}

// tokenHash computes an order-sensitive hash over a declaration's
// lexemes, trivia already stripped by the lexer.
func tokenHash(src string) string {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		sum := sha1.Sum([]byte(src))
		return hex.EncodeToString(sum[:])
	}
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(strconv.Itoa(int(t.Kind)))
		b.WriteByte(0)
		b.WriteString(t.Text)
		b.WriteByte(0)
	}
	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// fragmentID derives the stable (fileID, declPath, target) identity.
func fragmentID(fileID, declPath, target string) string {
	return fileID + ":" + declPath + ":" + target
}

// dependsOn is a deliberately simple same-file reference heuristic: decl
// A depends on decl B if B's declared name appears as a identifier-like
// substring in A's source. It is conservative (over-approximates
// dependencies, never under-approximates), which is what transitive
// dirty propagation needs to stay sound.
func dependsOn(declSrc, otherName string) bool {
	if otherName == "" {
		return false
	}
	idx := 0
	for {
		pos := strings.Index(declSrc[idx:], otherName)
		if pos < 0 {
			return false
		}
		pos += idx
		before := pos == 0 || !isIdentByte(declSrc[pos-1])
		after := pos+len(otherName) >= len(declSrc) || !isIdentByte(declSrc[pos+len(otherName)])
		if before && after {
			return true
		}
		idx = pos + 1
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func declName(path string) string {
	i := strings.IndexByte(path, ' ')
	if i < 0 {
		return ""
	}
	return path[i+1:]
}

// hydrate pulls a file's previously committed fragments in from the
// durable store the first time this in-process Session sees that file,
// so a fresh process reusing the same store still observes 0 dirty on
// an unchanged file.
func (s *Session) hydrate(fileID string) {
	if s.store == nil {
		return
	}
	rows, err := s.store.ByFile(fileID)
	if err != nil {
		return
	}
	for _, r := range rows {
		if _, known := s.fragments[r.ID]; known {
			continue
		}
		s.fragments[r.ID] = &Fragment{
			ID:           r.ID,
			FileID:       r.FileID,
			DeclPath:     r.DeclPath,
			TokenHash:    r.TokenHash,
			Target:       r.Target,
			Artifact:     r.Artifact,
			Dependencies: r.Dependencies,
			Dirty:        r.Dirty,
		}
	}
}

// Sync diffs source against the fragment cache for (path, target) and
// returns the up-to-date fragment set with Dirty flags resolved,
// including transitive propagation across same-file dependencies. It
// does not perform emission; callers (internal/transpile) fill in
// Artifact for every dirty fragment and call Commit.
func (s *Session) Sync(path, target, src string) []*Fragment {
	fileID := s.fileID(path)
	s.hydrate(fileID)
	decls := parser.SplitTopLevel(src)

	frags := make([]*Fragment, len(decls))
	for i, d := range decls {
		id := fragmentID(fileID, d.Path, target)
		hash := tokenHash(d.Source)

		var deps []string
		for j, other := range decls {
			if j == i {
				continue
			}
			if name := declName(other.Path); dependsOn(d.Source, name) {
				deps = append(deps, fragmentID(fileID, other.Path, target))
			}
		}

		prior, known := s.fragments[id]
		dirty := !known || prior.TokenHash != hash
		artifact := ""
		if known && !dirty {
			artifact = prior.Artifact
		}

		f := &Fragment{
			ID:           id,
			FileID:       fileID,
			DeclPath:     d.Path,
			TokenHash:    hash,
			Target:       target,
			Source:       d.Source,
			Artifact:     artifact,
			Dependencies: deps,
			Dirty:        dirty,
		}
		frags[i] = f
	}

	// Transitive dirty propagation to a fixed point: sets only grow, so
	// one pass per dependency edge suffices to converge.
	byID := make(map[string]*Fragment, len(frags))
	for _, f := range frags {
		byID[f.ID] = f
	}
	changed := true
	for changed {
		changed = false
		for _, f := range frags {
			if f.Dirty {
				continue
			}
			for _, dep := range f.Dependencies {
				if d, ok := byID[dep]; ok && d.Dirty {
					f.Dirty = true
					changed = true
					break
				}
			}
		}
	}

	return frags
}

// Commit records frags as the session's current state for their file and
// target, mirroring into the durable store when one is attached.
func (s *Session) Commit(frags []*Fragment) error {
	for _, f := range frags {
		cp := *f
		s.fragments[f.ID] = &cp
		if s.store != nil {
			if err := s.store.Put(fragstore.Row{
				ID:           f.ID,
				FileID:       f.FileID,
				DeclPath:     f.DeclPath,
				TokenHash:    f.TokenHash,
				Target:       f.Target,
				Artifact:     f.Artifact,
				Dependencies: f.Dependencies,
				Dirty:        f.Dirty,
			}); err != nil {
				return fmt.Errorf("session: commit %q: %w", f.ID, err)
			}
		}
	}
	return nil
}

// Stat summarizes frags in the [trans] N total, K dirty format.
func Stat(frags []*Fragment) Stats {
	st := Stats{Total: len(frags)}
	for _, f := range frags {
		if f.Dirty {
			st.Dirty++
		}
	}
	return st
}
