package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ironsheep/dataset-aug/internal/config"
)

// listFlag collects comma separated values over repeated uses.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			*l = append(*l, s)
		}
	}
	return nil
}

// intListFlag is listFlag for integers.
type intListFlag []int

func (l *intListFlag) String() string {
	parts := make([]string, len(*l))
	for i, v := range *l {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func (l *intListFlag) Set(v string) error {
	for _, s := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("not an integer: %q", s)
		}
		*l = append(*l, n)
	}
	return nil
}

// groupFlag makes each use one group of directories.
type groupFlag [][]string

func (g *groupFlag) String() string {
	parts := make([]string, len(*g))
	for i, dirs := range *g {
		parts[i] = strings.Join(dirs, ",")
	}
	return strings.Join(parts, " ")
}

func (g *groupFlag) Set(v string) error {
	var dirs listFlag
	if err := dirs.Set(v); err != nil {
		return err
	}
	if len(dirs) == 0 {
		return fmt.Errorf("empty group")
	}
	*g = append(*g, dirs)
	return nil
}

// renameFlag parses old=new pairs.
type renameFlag map[string]string

func (r renameFlag) String() string {
	parts := make([]string, 0, len(r))
	for k, v := range r {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (r renameFlag) Set(v string) error {
	from, to, ok := strings.Cut(v, "=")
	if !ok || from == "" {
		return fmt.Errorf("want old=new, got %q", v)
	}
	r[from] = to
	return nil
}

// ruleFlag parses PREFIX*SUFFIX=TO. Either side of the star may be empty;
// without a star the pattern is a prefix.
type ruleFlag []config.LabelRule

func (r *ruleFlag) String() string {
	parts := make([]string, len(*r))
	for i, rule := range *r {
		parts[i] = rule.Prefix + "*" + rule.Suffix + "=" + rule.To
	}
	return strings.Join(parts, ",")
}

func (r *ruleFlag) Set(v string) error {
	pattern, to, ok := strings.Cut(v, "=")
	if !ok || to == "" {
		return fmt.Errorf("want PREFIX*SUFFIX=TO, got %q", v)
	}
	prefix, suffix, _ := strings.Cut(pattern, "*")
	*r = append(*r, config.LabelRule{Prefix: prefix, Suffix: suffix, To: to})
	return nil
}

// splitFlag parses PREFIX=DIR.
type splitFlag []config.SplitRule

func (s *splitFlag) String() string {
	parts := make([]string, len(*s))
	for i, rule := range *s {
		parts[i] = rule.Prefix + "=" + rule.Dir
	}
	return strings.Join(parts, ",")
}

func (s *splitFlag) Set(v string) error {
	prefix, dir, ok := strings.Cut(v, "=")
	if !ok || dir == "" {
		return fmt.Errorf("want PREFIX=DIR, got %q", v)
	}
	*s = append(*s, config.SplitRule{Prefix: prefix, Dir: dir})
	return nil
}

// optIntFlag sets an optional integer only when the flag is given.
type optIntFlag struct{ p **int }

func (f optIntFlag) String() string {
	if f.p == nil || *f.p == nil {
		return ""
	}
	return strconv.Itoa(**f.p)
}

func (f optIntFlag) Set(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("not an integer: %q", v)
	}
	*f.p = &n
	return nil
}

// seedFlag remembers whether it was given.
type seedFlag struct {
	value uint64
	set   bool
}

func (s *seedFlag) String() string {
	if !s.set {
		return ""
	}
	return strconv.FormatUint(s.value, 10)
}

func (s *seedFlag) Set(v string) error {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid seed %q", v)
	}
	s.value, s.set = n, true
	return nil
}

func (s *seedFlag) ptr() *uint64 {
	if !s.set {
		return nil
	}
	return &s.value
}
