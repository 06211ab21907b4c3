package lex

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	sfzerrors "github.com/sfzkit/sfzkit/errors"
)

var (
	headerTag   = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	opcodeKey   = regexp.MustCompile(`[A-Za-z0-9_$]+=`)
	curvePoint  = regexp.MustCompile(`^v\d+$`)
	defineStmt  = regexp.MustCompile(`^#define\s+(\$[A-Za-z0-9_]+)\s+(\S+)`)
	includeStmt = regexp.MustCompile(`^#include\s+"([^"]*)"`)
)

// Scan reads SFZ source text and returns its syntax nodes in document
// order. path is used for error context only.
func Scan(r io.Reader, path string) ([]Node, error) {
	s := &scanner{path: path, defines: make(map[string]string)}
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for lines.Scan() {
		lineNo++
		if err := s.scanLine(lines.Text(), lineNo); err != nil {
			return nil, err
		}
	}
	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return s.nodes, nil
}

type scanner struct {
	path    string
	nodes   []Node
	defines map[string]string // "$VAR" -> replacement
	names   []string          // define names, longest first
}

func (s *scanner) scanLine(line string, lineNo int) error {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	i := 0
	for i < len(line) {
		switch c := line[i]; {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '<':
			next, err := s.scanHeader(line, i, lineNo)
			if err != nil {
				return err
			}
			i = next
		case c == '#':
			next, err := s.scanDirective(line, i, lineNo)
			if err != nil {
				return err
			}
			i = next
		default:
			bound := segmentEnd(line, i)
			if err := s.scanOpcodes(line[i:bound], i, lineNo); err != nil {
				return err
			}
			i = bound
		}
	}
	return nil
}

func (s *scanner) scanHeader(line string, i, lineNo int) (int, error) {
	end := strings.IndexByte(line[i:], '>')
	if end < 0 {
		return 0, s.errorf(lineNo, i+1, "unterminated header tag")
	}
	tag := line[i+1 : i+end]
	if !headerTag.MatchString(tag) {
		return 0, s.errorf(lineNo, i+1, "invalid header tag %q", tag)
	}
	s.nodes = append(s.nodes, Node{
		Kind: KindHeader,
		Tag:  tag,
		Span: Span{Line: lineNo, Column: i + 1, EndLine: lineNo, EndColumn: i + end + 2},
	})
	return i + end + 1, nil
}

func (s *scanner) scanDirective(line string, i, lineNo int) (int, error) {
	rest := line[i:]
	if m := defineStmt.FindStringSubmatchIndex(rest); m != nil {
		name := rest[m[2]:m[3]]
		value := rest[m[4]:m[5]]
		s.nodes = append(s.nodes, Node{
			Kind:  KindDefine,
			Name:  name,
			Value: value,
			Span:  Span{Line: lineNo, Column: i + 1, EndLine: lineNo, EndColumn: i + m[1] + 1},
		})
		s.define(name, value)
		return i + m[1], nil
	}
	if m := includeStmt.FindStringSubmatchIndex(rest); m != nil {
		s.nodes = append(s.nodes, Node{
			Kind: KindInclude,
			Path: rest[m[2]:m[3]],
			Span: Span{Line: lineNo, Column: i + 1, EndLine: lineNo, EndColumn: i + m[1] + 1},
		})
		return i + m[1], nil
	}
	return 0, s.errorf(lineNo, i+1, "unrecognized directive")
}

func (s *scanner) scanOpcodes(seg string, segStart, lineNo int) error {
	matches := opcodeKey.FindAllStringIndex(seg, -1)
	if len(matches) == 0 {
		if strings.TrimSpace(seg) != "" {
			return s.errorf(lineNo, segStart+1, "expected name=value, found %q", strings.TrimSpace(seg))
		}
		return nil
	}
	if strings.TrimSpace(seg[:matches[0][0]]) != "" {
		return s.errorf(lineNo, segStart+1, "stray text %q before opcode", strings.TrimSpace(seg[:matches[0][0]]))
	}
	for k, m := range matches {
		name := s.expand(seg[m[0] : m[1]-1])
		valueEnd := len(seg)
		if k+1 < len(matches) {
			valueEnd = matches[k+1][0]
		}
		raw := strings.TrimRight(seg[m[1]:valueEnd], " \t")
		kind := KindOpcode
		if curvePoint.MatchString(name) {
			kind = KindCurvePoint
		}
		s.nodes = append(s.nodes, Node{
			Kind:  kind,
			Name:  name,
			Value: s.expand(strings.TrimLeft(raw, " \t")),
			Span: Span{
				Line:      lineNo,
				Column:    segStart + m[0] + 1,
				EndLine:   lineNo,
				EndColumn: segStart + m[1] + len(raw) + 1,
			},
		})
	}
	return nil
}

// define records a substitution variable. Longer names substitute first so
// $CCVOL is never clobbered by an earlier $CC.
func (s *scanner) define(name, value string) {
	if _, exists := s.defines[name]; !exists {
		s.names = append(s.names, name)
		sort.Slice(s.names, func(i, j int) bool { return len(s.names[i]) > len(s.names[j]) })
	}
	s.defines[name] = value
}

func (s *scanner) expand(text string) string {
	if len(s.defines) == 0 || !strings.ContainsRune(text, '$') {
		return text
	}
	for _, name := range s.names {
		text = strings.ReplaceAll(text, name, s.defines[name])
	}
	return text
}

// segmentEnd returns the index of the next top-level construct after i.
func segmentEnd(line string, i int) int {
	for j := i; j < len(line); j++ {
		if line[j] == '<' || line[j] == '#' {
			return j
		}
	}
	return len(line)
}

func (s *scanner) errorf(line, column int, format string, args ...any) error {
	return &sfzerrors.Parse{
		Path:    s.path,
		Line:    line,
		Column:  column,
		Message: fmt.Sprintf(format, args...),
	}
}
