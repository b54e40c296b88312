// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuidv7 issues and checks the time-ordered IDs used for avatar
// sessions. Session keys sort by creation time, which keeps Redis SCAN output
// and log lines in opening order.
package uuidv7

import "github.com/google/uuid"

// New returns a fresh UUIDv7 string. It panics only when the OS random source
// fails.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Valid reports whether s is a canonical UUID of version 7.
func Valid(s string) bool {
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return id.Version() == 7 && id.String() == s
}
