// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package profilecache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKeyIsDeterministic(t *testing.T) {
	a := NewKey([]byte("ACGT"), "blosum62", true)
	b := NewKey([]byte("ACGT"), "blosum62", true)
	assert.Equal(t, a, b)
}

func TestNewKeyDistinguishesInputs(t *testing.T) {
	base := NewKey([]byte("ACGT"), "blosum62", true)
	diffQuery := NewKey([]byte("ACGG"), "blosum62", true)
	diffMatrix := NewKey([]byte("ACGT"), "pam250", true)
	diffBias := NewKey([]byte("ACGT"), "blosum62", false)

	assert.NotEqual(t, base.Fast, diffQuery.Fast)
	assert.NotEqual(t, base.Fast, diffMatrix.Fast)
	assert.NotEqual(t, base.Fast, diffBias.Fast)
}

func TestMemStorePutGet(t *testing.T) {
	store := NewMemStore()
	key := NewKey([]byte("ACGT"), "blosum62", true)
	entry := Entry{Key: key, Data: []byte{1, 2, 3}}

	_, ok := store.Get(key)
	assert.False(t, ok)

	store.Put(entry)
	got, ok := store.Get(key)
	assert.True(t, ok)
	assert.Equal(t, entry, got)
}

func TestMemStoreRejectsIntegrityMismatch(t *testing.T) {
	store := NewMemStore()
	key := NewKey([]byte("ACGT"), "blosum62", true)
	store.Put(Entry{Key: key, Data: []byte{1, 2, 3}})

	corrupted := key
	corrupted.Integrity[0] ^= 0xFF
	_, ok := store.Get(corrupted)
	assert.False(t, ok)
}

func TestEncodeKeyRoundTripsLength(t *testing.T) {
	key := NewKey([]byte("ACGT"), "blosum62", true)
	buf := EncodeKey(key)
	assert.Len(t, buf, 8+len(key.Integrity))
}
