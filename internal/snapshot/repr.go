// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package snapshot

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

const (
	// maxReprDepth bounds recursion into nested containers.
	maxReprDepth = 5

	// maxReprElems bounds how many elements of one container are rendered.
	maxReprElems = 8

	// ellipsis marks truncated output.
	ellipsis = "..."
)

// reprValue renders an arbitrary runtime value as bounded text.
//
// Description:
//
//	This is the load-bearing safety routine of the snapshot builder.
//	Arbitrary values (multi-megabyte buffers, cyclic object graphs,
//	deeply nested structures) must never hang the diagnostic path,
//	explode memory, or exceed the backend's input budget. Rendering is
//	therefore depth-limited, element-limited, cycle-aware, and the final
//	output is hard-capped at maxLen characters.
//
// Inputs:
//
//	v - The value to render. May be nil.
//	maxLen - Hard cap on the rendered length. Must be > 0.
//
// Outputs:
//
//	string - The bounded rendering; len(result) <= maxLen always holds.
func reprValue(v any, maxLen int) string {
	var b strings.Builder
	seen := make(map[uintptr]bool)
	writeRepr(&b, reflect.ValueOf(v), 0, maxLen+1, seen)
	return clamp(b.String(), maxLen)
}

// clamp cuts s to at most maxLen characters, marking the cut with an
// ellipsis when it fits.
func clamp(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= len(ellipsis) {
		return s[:maxLen]
	}
	return s[:maxLen-len(ellipsis)] + ellipsis
}

// writeRepr appends a rendering of v to b, stopping once b already holds
// budget characters. The caller clamps the final result, so overshooting
// by one element is fine; what matters is that rendering terminates.
func writeRepr(b *strings.Builder, v reflect.Value, depth, budget int, seen map[uintptr]bool) {
	if b.Len() >= budget {
		return
	}
	if !v.IsValid() {
		b.WriteString("<nil>")
		return
	}
	if depth > maxReprDepth {
		b.WriteString(ellipsis)
		return
	}

	switch v.Kind() {
	case reflect.String:
		s := v.String()
		// Pre-cut huge strings so quoting never allocates more than the
		// budget's worth of output.
		if len(s) > budget {
			s = s[:budget]
		}
		b.WriteString(strconv.Quote(s))

	case reflect.Bool:
		b.WriteString(strconv.FormatBool(v.Bool()))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(v.Int(), 10))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteString(strconv.FormatUint(v.Uint(), 10))

	case reflect.Float32, reflect.Float64:
		b.WriteString(strconv.FormatFloat(v.Float(), 'g', -1, 64))

	case reflect.Complex64, reflect.Complex128:
		fmt.Fprintf(b, "%v", v.Complex())

	case reflect.Pointer:
		if v.IsNil() {
			b.WriteString("<nil>")
			return
		}
		ptr := v.Pointer()
		if seen[ptr] {
			b.WriteString("<cycle>")
			return
		}
		seen[ptr] = true
		b.WriteString("&")
		writeRepr(b, v.Elem(), depth+1, budget, seen)
		delete(seen, ptr)

	case reflect.Interface:
		if v.IsNil() {
			b.WriteString("<nil>")
			return
		}
		writeRepr(b, v.Elem(), depth, budget, seen)

	case reflect.Slice:
		if v.IsNil() {
			b.WriteString("<nil>")
			return
		}
		ptr := v.Pointer()
		if seen[ptr] {
			b.WriteString("<cycle>")
			return
		}
		seen[ptr] = true
		writeSeq(b, v, depth, budget, seen)
		delete(seen, ptr)

	case reflect.Array:
		writeSeq(b, v, depth, budget, seen)

	case reflect.Map:
		if v.IsNil() {
			b.WriteString("<nil>")
			return
		}
		ptr := v.Pointer()
		if seen[ptr] {
			b.WriteString("<cycle>")
			return
		}
		seen[ptr] = true
		writeMap(b, v, depth, budget, seen)
		delete(seen, ptr)

	case reflect.Struct:
		writeStruct(b, v, depth, budget, seen)

	default:
		// Func, Chan, UnsafePointer: only the type is useful.
		b.WriteString("<" + v.Type().String() + ">")
	}
}

func writeSeq(b *strings.Builder, v reflect.Value, depth, budget int, seen map[uintptr]bool) {
	b.WriteString("[")
	n := v.Len()
	for i := 0; i < n; i++ {
		if b.Len() >= budget {
			return
		}
		if i > 0 {
			b.WriteString(", ")
		}
		if i == maxReprElems {
			fmt.Fprintf(b, "%s +%d more", ellipsis, n-maxReprElems)
			break
		}
		writeRepr(b, v.Index(i), depth+1, budget, seen)
	}
	b.WriteString("]")
}

func writeMap(b *strings.Builder, v reflect.Value, depth, budget int, seen map[uintptr]bool) {
	// Sort keys by rendered form so output is deterministic.
	keys := v.MapKeys()
	rendered := make([]string, len(keys))
	for i, k := range keys {
		var kb strings.Builder
		writeRepr(&kb, k, depth+1, budget, seen)
		rendered[i] = kb.String()
	}
	sort.Sort(&keySorter{keys: keys, rendered: rendered})

	b.WriteString("map[")
	for i, k := range keys {
		if b.Len() >= budget {
			return
		}
		if i > 0 {
			b.WriteString(", ")
		}
		if i == maxReprElems {
			fmt.Fprintf(b, "%s +%d more", ellipsis, len(keys)-maxReprElems)
			break
		}
		b.WriteString(rendered[i])
		b.WriteString(": ")
		writeRepr(b, v.MapIndex(k), depth+1, budget, seen)
	}
	b.WriteString("]")
}

func writeStruct(b *strings.Builder, v reflect.Value, depth, budget int, seen map[uintptr]bool) {
	t := v.Type()
	b.WriteString(t.Name())
	b.WriteString("{")
	written := 0
	for i := 0; i < t.NumField(); i++ {
		if b.Len() >= budget {
			return
		}
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if written > 0 {
			b.WriteString(", ")
		}
		if written == maxReprElems {
			b.WriteString(ellipsis)
			break
		}
		b.WriteString(field.Name)
		b.WriteString(": ")
		writeRepr(b, v.Field(i), depth+1, budget, seen)
		written++
	}
	b.WriteString("}")
}

// keySorter orders map keys by their rendered representation.
type keySorter struct {
	keys     []reflect.Value
	rendered []string
}

func (s *keySorter) Len() int           { return len(s.keys) }
func (s *keySorter) Less(i, j int) bool { return s.rendered[i] < s.rendered[j] }
func (s *keySorter) Swap(i, j int) {
	s.keys[i], s.keys[j] = s.keys[j], s.keys[i]
	s.rendered[i], s.rendered[j] = s.rendered[j], s.rendered[i]
}
