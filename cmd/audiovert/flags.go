package main

import (
	"strings"

	"github.com/spf13/pflag"

	"audiovert/internal/rules"
)

// conditionsFlag collects repeated --conversion values in order.
type conditionsFlag struct {
	values []rules.Condition
}

var _ pflag.Value = (*conditionsFlag)(nil)

func (f *conditionsFlag) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		cond, err := rules.ParseCondition(part)
		if err != nil {
			return err
		}
		f.values = append(f.values, cond)
	}
	return nil
}

func (f *conditionsFlag) String() string {
	parts := make([]string, 0, len(f.values))
	for _, c := range f.values {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ",")
}

func (f *conditionsFlag) Type() string { return "rule" }

// bitratesFlag collects repeated --bitrates values in order.
type bitratesFlag struct {
	values []rules.BitrateRule
}

var _ pflag.Value = (*bitratesFlag)(nil)

func (f *bitratesFlag) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		rule, err := rules.ParseBitrateRule(part)
		if err != nil {
			return err
		}
		f.values = append(f.values, rule)
	}
	return nil
}

func (f *bitratesFlag) String() string {
	parts := make([]string, 0, len(f.values))
	for _, r := range f.values {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, ",")
}

func (f *bitratesFlag) Type() string { return "format=kbps" }
