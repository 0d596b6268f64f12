// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// crypto_test.go — encrypted round trips and the failure taxonomy: wrong
// passphrase, tampered ciphertext, and ciphertext mistaken for plaintext.

package gridio_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDonelson/gridio"
)

func TestEncryptedRoundTrip(t *testing.T) {
	doc := newTestNetwork(t)

	text, err := gridio.ToJSON(doc, gridio.WithEncryption("verysecret"))
	require.NoError(t, err)

	v, err := gridio.FromJSON(text, gridio.WithEncryption("verysecret"))
	require.NoError(t, err)
	got, ok := v.(*gridio.Document)
	require.True(t, ok)
	assert.True(t, got.Equal(doc))
}

func TestEncryptedOutputIsOpaque(t *testing.T) {
	doc := newTestNetwork(t)

	text, err := gridio.ToJSON(doc, gridio.WithEncryption("verysecret"))
	require.NoError(t, err)
	assert.NotContains(t, text, "bus")
	assert.NotContains(t, text, "_type")

	// The envelope is not plain interchange text.
	_, err = gridio.FromJSON(text)
	assert.ErrorIs(t, err, gridio.ErrMalformedPayload)
}

func TestWrongPassphrase(t *testing.T) {
	text, err := gridio.ToJSON(newTestNetwork(t), gridio.WithEncryption("verysecret"))
	require.NoError(t, err)

	_, err = gridio.FromJSON(text, gridio.WithEncryption("notsecret"))
	assert.ErrorIs(t, err, gridio.ErrAuthentication)
}

func TestTamperedCiphertext(t *testing.T) {
	text, err := gridio.ToJSON(newTestNetwork(t), gridio.WithEncryption("verysecret"))
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(text)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	tampered := base64.StdEncoding.EncodeToString(raw)

	_, err = gridio.FromJSON(tampered, gridio.WithEncryption("verysecret"))
	assert.ErrorIs(t, err, gridio.ErrAuthentication)
}

func TestDecryptGarbageEnvelope(t *testing.T) {
	_, err := gridio.FromJSON("not base64 at all!!", gridio.WithEncryption("verysecret"))
	assert.ErrorIs(t, err, gridio.ErrMalformedPayload)

	// Valid base64 but too short to hold salt and nonce.
	short := base64.StdEncoding.EncodeToString([]byte("tiny"))
	_, err = gridio.FromJSON(short, gridio.WithEncryption("verysecret"))
	assert.ErrorIs(t, err, gridio.ErrMalformedPayload)
}

func TestEncryptionSaltsAreFresh(t *testing.T) {
	doc := newTestNetwork(t)
	a, err := gridio.ToJSON(doc, gridio.WithEncryption("verysecret"))
	require.NoError(t, err)
	b, err := gridio.ToJSON(doc, gridio.WithEncryption("verysecret"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDeriveKeyDeterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")
	k1 := gridio.DeriveKey("verysecret", salt)
	k2 := gridio.DeriveKey("verysecret", salt)
	require.Len(t, k1, 32)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, gridio.DeriveKey("other", salt))
}
