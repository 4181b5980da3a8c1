// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package drive

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/cognitrace/internal/report"
)

type recorder struct {
	prompts  int
	answer   bool
	executed []string
	failOn   string
}

func (r *recorder) confirm(string) bool {
	r.prompts++
	return r.answer
}

func (r *recorder) execute(cmd string) error {
	r.executed = append(r.executed, cmd)
	if cmd == r.failOn {
		return errors.New("interpreter rejected command")
	}
	return nil
}

func newTestDriver(buf *bytes.Buffer) *Driver {
	return NewDriver(report.NewPlainPrinter(buf), nil)
}

func TestDrive_EmptyListDoesNothing(t *testing.T) {
	var buf bytes.Buffer
	rec := &recorder{answer: true}

	err := newTestDriver(&buf).Drive(nil, rec.confirm, rec.execute)

	require.NoError(t, err)
	assert.Zero(t, rec.prompts, "no confirmation prompt for an empty list")
	assert.Empty(t, rec.executed)
	assert.Empty(t, buf.String())
}

func TestDrive_DeniedExecutesNothing(t *testing.T) {
	var buf bytes.Buffer
	rec := &recorder{answer: false}

	err := newTestDriver(&buf).Drive([]string{"p y", "up"}, rec.confirm, rec.execute)

	require.NoError(t, err)
	assert.Equal(t, 1, rec.prompts)
	assert.Empty(t, rec.executed)
	assert.Contains(t, buf.String(), "Skipped autonomous commands.")
}

func TestDrive_GrantedExecutesInOrder(t *testing.T) {
	var buf bytes.Buffer
	rec := &recorder{answer: true}

	err := newTestDriver(&buf).Drive([]string{"p y", "up", "locals"}, rec.confirm, rec.execute)

	require.NoError(t, err)
	assert.Equal(t, 1, rec.prompts, "confirmation asked exactly once")
	assert.Equal(t, []string{"p y", "up", "locals"}, rec.executed)

	out := buf.String()
	assert.Contains(t, out, " 1. p y")
	assert.Contains(t, out, " 2. up")
	assert.Contains(t, out, " 3. locals")
	assert.Contains(t, out, "-> p y")
}

func TestDrive_FailureAbortsPass(t *testing.T) {
	var buf bytes.Buffer
	rec := &recorder{answer: true, failOn: "up"}

	err := newTestDriver(&buf).Drive([]string{"p y", "up", "locals"}, rec.confirm, rec.execute)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"up"`)
	assert.Equal(t, []string{"p y", "up"}, rec.executed, "commands after the failure stay unexecuted")
}
