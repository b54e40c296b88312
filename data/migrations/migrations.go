// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migrations embeds the SQL schema so the binary can migrate without
// a checkout of this directory.
package migrations

import "embed"

// Files holds every *.sql migration in this directory.
//
//go:embed *.sql
var Files embed.FS
