package logger

// This package is a trimmed adaptation of esbuild's logging layer. It keeps
// the shape that the rest of the compiler expects (a Log value built from
// closures, Msg/Loc/Range/Source) but drops the terminal color and line
// wrapping machinery that only matters for a command-line front end, since
// this module's external CLI/file-I/O driver is out of scope here.

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

type Log struct {
	AddMsg    func(Msg)
	HasErrors func() bool
	Done      func() []Msg
}

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
)

type Msg struct {
	Kind     MsgKind
	Text     string
	Notes    []string
	Location *MsgLocation
}

type MsgLocation struct {
	File     string
	Line     int // 1-based
	Column   int // 0-based, in bytes
	Length   int // in bytes
	LineText string
}

// Loc is a 0-based byte offset into a Source's contents.
type Loc struct {
	Start int32
}

type Range struct {
	Loc Loc
	Len int32
}

func (r Range) End() int32 {
	return r.Loc.Start + r.Len
}

type Source struct {
	Index      uint32
	PrettyPath string
	Contents   string
}

func (s *Source) TextForRange(r Range) string {
	return s.Contents[r.Loc.Start : r.Loc.Start+r.Len]
}

func computeLineAndColumn(contents string, offset int) (lineCount int, columnCount int, lineStart int, lineEnd int) {
	if offset > len(contents) {
		offset = len(contents)
	}
	for i, c := range contents[:offset] {
		if c == '\n' {
			lineStart = i + 1
			lineCount++
		}
	}
	lineEnd = len(contents)
	for i, c := range contents[offset:] {
		if c == '\n' {
			lineEnd = offset + i
			break
		}
	}
	columnCount = offset - lineStart
	return
}

func locationOrNil(source *Source, r Range) *MsgLocation {
	if source == nil {
		return nil
	}
	lineCount, columnCount, lineStart, lineEnd := computeLineAndColumn(source.Contents, int(r.Loc.Start))
	return &MsgLocation{
		File:     source.PrettyPath,
		Line:     lineCount + 1,
		Column:   columnCount,
		Length:   int(r.Len),
		LineText: source.Contents[lineStart:lineEnd],
	}
}

// LocationForRange is locationOrNil's exported counterpart for callers
// outside this package that carry a Loc but not always a Source: with a
// Source it reports full file/line/column/line-text, and without one it
// still reports the raw byte offset and length rather than dropping the
// position entirely.
func LocationForRange(source *Source, r Range) *MsgLocation {
	if source == nil {
		return &MsgLocation{Column: int(r.Loc.Start), Length: int(r.Len)}
	}
	return locationOrNil(source, r)
}

func (log Log) AddError(source *Source, loc Loc, text string) {
	log.AddMsg(Msg{Kind: Error, Text: text, Location: locationOrNil(source, Range{Loc: loc})})
}

func (log Log) AddErrorWithNotes(source *Source, loc Loc, text string, notes []string) {
	log.AddMsg(Msg{Kind: Error, Text: text, Notes: notes, Location: locationOrNil(source, Range{Loc: loc})})
}

func (log Log) AddWarning(source *Source, loc Loc, text string) {
	log.AddMsg(Msg{Kind: Warning, Text: text, Location: locationOrNil(source, Range{Loc: loc})})
}

func (log Log) AddRangeError(source *Source, r Range, text string) {
	log.AddMsg(Msg{Kind: Error, Text: text, Location: locationOrNil(source, r)})
}

// msgsArray implements sort.Interface so Done() can report messages in a
// stable, deterministic order regardless of which goroutine raised them.
type msgsArray []Msg

func (a msgsArray) Len() int      { return len(a) }
func (a msgsArray) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a msgsArray) Less(i, j int) bool {
	li, lj := a[i].Location, a[j].Location
	if li == nil && lj != nil {
		return true
	}
	if li != nil && lj == nil {
		return false
	}
	if li != nil && lj != nil {
		if li.File != lj.File {
			return li.File < lj.File
		}
		if li.Line != lj.Line {
			return li.Line < lj.Line
		}
		if li.Column != lj.Column {
			return li.Column < lj.Column
		}
	}
	return false
}

func (msg Msg) String() string {
	kind := "error"
	if msg.Kind == Warning {
		kind = "warning"
	}

	var b strings.Builder
	if msg.Location == nil {
		fmt.Fprintf(&b, "%s: %s\n", kind, msg.Text)
	} else {
		loc := msg.Location
		fmt.Fprintf(&b, "%s:%d:%d: %s: %s\n", loc.File, loc.Line, loc.Column, kind, msg.Text)
		if loc.LineText != "" {
			fmt.Fprintf(&b, "  %s\n", loc.LineText)
		}
	}
	for _, note := range msg.Notes {
		fmt.Fprintf(&b, "  note: %s\n", note)
	}
	return b.String()
}

// NewDeferLog creates a Log that collects messages in memory instead of
// printing them. This is what the extension engine's tests and library
// callers use since they want to inspect diagnostics programmatically.
func NewDeferLog() Log {
	var msgs msgsArray
	var mutex sync.Mutex
	var hasErrors bool

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			if msg.Kind == Error {
				hasErrors = true
			}
			msgs = append(msgs, msg)
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return hasErrors
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			sort.Stable(msgs)
			return msgs
		},
	}
}

// NewStderrLog creates a Log that prints each message to stderr as it
// arrives. Intended for a command-line front end; the core extension engine
// never constructs one of these itself.
func NewStderrLog() Log {
	var mutex sync.Mutex
	var msgs msgsArray
	var hasErrors bool

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			if msg.Kind == Error {
				hasErrors = true
			}
			msgs = append(msgs, msg)
			fmt.Fprint(os.Stderr, msg.String())
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return hasErrors
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			sort.Stable(msgs)
			return msgs
		},
	}
}
