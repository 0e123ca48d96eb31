// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depotdata

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/hex"
	"hash/crc32"

	"go.chromium.org/luci/common/errors"
)

// RawKeySize is the width of the key as it is stored in the keystore file:
// 32 hex characters, i.e. 16 raw bytes.
const RawKeySize = 16

// AESKeySize is the width AES-256 actually requires.
const AESKeySize = 32

// DecodeHexKey decodes a 32-character hex string into its 16 raw bytes. It
// is the single parsing site for key material, used by both the keystore
// and the --key command-line flag so they agree on format.
func DecodeHexKey(hexKey string) ([]byte, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, errors.Annotate(err).Reason("decoding hex key").Err()
	}
	if len(raw) != RawKeySize {
		return nil, errors.Reason("hex key decodes to %(got)d bytes, want %(want)d").
			D("got", len(raw)).D("want", RawKeySize).Err()
	}
	return raw, nil
}

// ExpandKey turns the 16 raw key bytes read from the keystore into the
// 32-byte key AES-256 requires, by repeating the 16 bytes back to back.
// See DESIGN.md's Open Question Decisions for why this rule was chosen over
// zero-extension.
func ExpandKey(raw []byte) ([]byte, error) {
	if len(raw) != RawKeySize {
		return nil, errors.Reason("raw key is %(got)d bytes, want %(want)d").
			D("got", len(raw)).D("want", RawKeySize).Err()
	}
	key := make([]byte, AESKeySize)
	copy(key[:RawKeySize], raw)
	copy(key[RawKeySize:], raw)
	return key, nil
}

// DecryptCBC decrypts an AES-256-CBC ciphertext whose first 16 bytes are the
// IV and whose remaining bytes are the encrypted body (a multiple of the AES
// block size). If stripPadding is true, PKCS#7 padding is removed from the
// tail of the returned plaintext -- callers should only request this for the
// last block of a file, per spec.
func DecryptCBC(key, ciphertext []byte, stripPadding bool) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Annotate(ErrDecrypt).Reason("building AES cipher: %(err)s").
			D("err", err).Err()
	}
	if len(ciphertext) < aes.BlockSize {
		return nil, errors.Annotate(ErrDecrypt).Reason("ciphertext shorter than IV (%(n)d bytes)").
			D("n", len(ciphertext)).Err()
	}
	iv := ciphertext[:aes.BlockSize]
	body := ciphertext[aes.BlockSize:]
	if len(body)%aes.BlockSize != 0 {
		return nil, errors.Annotate(ErrDecrypt).Reason("ciphertext body length %(n)d not a multiple of block size").
			D("n", len(body)).Err()
	}

	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, body)

	if !stripPadding || len(plain) == 0 {
		return plain, nil
	}
	return stripPKCS7(plain)
}

func stripPKCS7(plain []byte) ([]byte, error) {
	padLen := int(plain[len(plain)-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > len(plain) {
		return nil, errors.Annotate(ErrDecrypt).Reason("invalid PKCS#7 padding length %(n)d").
			D("n", padLen).Err()
	}
	for _, b := range plain[len(plain)-padLen:] {
		if int(b) != padLen {
			return nil, errors.Annotate(ErrDecrypt).Reason("malformed PKCS#7 padding").Err()
		}
	}
	return plain[:len(plain)-padLen], nil
}

// BlockSum computes the 32-bit checksum stored per-32KiB-window in a depot's
// Checksum file: a wraparound sum of the buffer's bytes added to the CRC-32
// (IEEE polynomial) of the same bytes. See DESIGN.md's Open Question
// Decisions for why this particular construction was chosen.
func BlockSum(buf []byte) uint32 {
	var sum uint32
	for _, b := range buf {
		sum += uint32(b)
	}
	return sum + crc32.ChecksumIEEE(buf)
}

// MD5Sum returns the MD5 digest of buf, used only by the network fetch
// adapter to verify chunks as they arrive from a content server.
func MD5Sum(buf []byte) [md5.Size]byte {
	return md5.Sum(buf)
}
