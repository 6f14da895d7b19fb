package config

import (
	"fmt"
	"strings"
)

// Problem is one invalid environment setting
type Problem struct {
	Env     string
	Message string
}

func (p Problem) Error() string {
	return p.Env + " " + p.Message
}

// Problems is every invalid setting found in one check
type Problems []Problem

func (p Problems) Error() string {
	msgs := make([]string, len(p))
	for i, problem := range p {
		msgs[i] = problem.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// Checker accumulates problems so a config reports all of them at once
type Checker struct {
	problems Problems
}

func (c *Checker) add(env, format string, args ...any) {
	c.problems = append(c.problems, Problem{Env: env, Message: fmt.Sprintf(format, args...)})
}

func (c *Checker) Required(env, value string) {
	if value == "" {
		c.add(env, "is required")
	}
}

func (c *Checker) Port(env string, value uint16) {
	if value == 0 {
		c.add(env, "must be a port between 1 and 65535")
	}
}

func (c *Checker) NonNegative(env string, value int64) {
	if value < 0 {
		c.add(env, "must not be negative, got %d", value)
	}
}

// MinLength is skipped for empty values; pair it with Required
func (c *Checker) MinLength(env, value string, n int) {
	if value != "" && len(value) < n {
		c.add(env, "must be at least %d characters", n)
	}
}

// Err returns the accumulated Problems, or nil
func (c *Checker) Err() error {
	if len(c.problems) == 0 {
		return nil
	}
	return c.problems
}
