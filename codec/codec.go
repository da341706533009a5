// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package codec selects the decoding pipeline for an encoded texture
// payload.
//
// Detection is a header sniff only: no decoding is performed and the
// payload is never modified. Container signatures (DDS, KTX 1.1) are
// registered with github.com/h2non/filetype so the same matcher set also
// serves MIME diagnostics for every other image type.
package codec

import (
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"

	"github.com/gogpu/texture/codec/container"
)

// Kind selects a decoder pipeline.
type Kind uint8

const (
	// KindGeneric is a flat single-surface image (PNG, JPEG, HDR, ...).
	KindGeneric Kind = iota

	// KindContainer is a multi-surface texture container (DDS, KTX).
	KindContainer
)

// String returns the pipeline name.
func (k Kind) String() string {
	if k == KindContainer {
		return "container"
	}
	return "generic"
}

// File types registered with filetype for container signatures.
var (
	TypeDDS = filetype.NewType("dds", "image/vnd-ms.dds")
	TypeKTX = filetype.NewType("ktx", "image/ktx")
)

func init() {
	filetype.AddMatcher(TypeDDS, container.MatchDDS)
	filetype.AddMatcher(TypeKTX, container.MatchKTX)
}

// Detect returns KindContainer iff data starts with a container signature.
func Detect(data []byte) Kind {
	if filetype.IsType(data, TypeDDS) || filetype.IsType(data, TypeKTX) {
		return KindContainer
	}
	return KindGeneric
}

// Description reports what a payload looks like, for diagnostics.
type Description struct {
	Kind      Kind
	Extension string
	MIME      string
}

// Describe identifies data without decoding it. Unrecognized payloads
// report the filetype "unknown" extension and an empty MIME type.
func Describe(data []byte) Description {
	kind, err := filetype.Match(data)
	if err != nil {
		kind = types.Unknown
	}
	return Description{
		Kind:      Detect(data),
		Extension: kind.Extension,
		MIME:      kind.MIME.Value,
	}
}
