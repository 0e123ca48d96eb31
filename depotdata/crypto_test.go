// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depotdata

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func encryptCBC(t *testing.T, key, plain []byte) []byte {
	t.Helper()

	padLen := aes.BlockSize - len(plain)%aes.BlockSize
	padded := append(append([]byte{}, plain...), make([]byte, padLen)...)
	for i := len(plain); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		t.Fatal(err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	body := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(body, padded)

	return append(append([]byte{}, iv...), body...)
}

func TestDecodeHexKey(t *testing.T) {
	t.Parallel()

	Convey("DecodeHexKey", t, func() {
		Convey("good", func() {
			raw, err := DecodeHexKey("000102030405060708090A0B0C0D0E0F")
			So(err, ShouldBeNil)
			So(len(raw), ShouldEqual, RawKeySize)
			So(raw[0], ShouldEqual, byte(0x00))
			So(raw[15], ShouldEqual, byte(0x0F))
		})

		Convey("wrong length", func() {
			_, err := DecodeHexKey("0001")
			So(err, ShouldNotBeNil)
		})

		Convey("not hex", func() {
			_, err := DecodeHexKey("zz")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestExpandKey(t *testing.T) {
	t.Parallel()

	Convey("ExpandKey repeats the 16 raw bytes", t, func() {
		raw, err := DecodeHexKey("000102030405060708090A0B0C0D0E0F")
		So(err, ShouldBeNil)
		key, err := ExpandKey(raw)
		So(err, ShouldBeNil)
		So(len(key), ShouldEqual, AESKeySize)
		So(key[:16], ShouldResemble, raw)
		So(key[16:], ShouldResemble, raw)
	})
}

func TestDecryptCBC(t *testing.T) {
	t.Parallel()

	Convey("DecryptCBC", t, func() {
		raw, err := DecodeHexKey("000102030405060708090A0B0C0D0E0F")
		So(err, ShouldBeNil)
		key, err := ExpandKey(raw)
		So(err, ShouldBeNil)

		plain := []byte("Hello World")
		ciphertext := encryptCBC(t, key, plain)

		Convey("strips padding for the file's last block", func() {
			out, err := DecryptCBC(key, ciphertext, true)
			So(err, ShouldBeNil)
			So(out, ShouldResemble, plain)
		})

		Convey("leaves padding when not the last block", func() {
			out, err := DecryptCBC(key, ciphertext, false)
			So(err, ShouldBeNil)
			So(len(out)%aes.BlockSize, ShouldEqual, 0)
			So(out[:len(plain)], ShouldResemble, plain)
		})

		Convey("fails on a ciphertext shorter than the IV", func() {
			_, err := DecryptCBC(key, []byte{1, 2, 3}, true)
			So(err, ShouldNotBeNil)
		})

		Convey("fails on a body not a multiple of the block size", func() {
			bad := append([]byte{}, ciphertext...)
			bad = bad[:len(bad)-1]
			_, err := DecryptCBC(key, bad, true)
			So(err, ShouldNotBeNil)
		})

		Convey("fails on corrupted padding", func() {
			bad := append([]byte{}, ciphertext...)
			bad[len(bad)-1] ^= 0xFF
			_, err := DecryptCBC(key, bad, true)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestBlockSum(t *testing.T) {
	t.Parallel()

	Convey("BlockSum is deterministic and sensitive to content", t, func() {
		a := BlockSum([]byte("Hello World"))
		b := BlockSum([]byte("Hello World"))
		c := BlockSum([]byte("Hello World!"))
		So(a, ShouldEqual, b)
		So(a, ShouldNotEqual, c)
	})
}

func TestMD5Sum(t *testing.T) {
	t.Parallel()

	Convey("MD5Sum is deterministic and sensitive to content", t, func() {
		a := MD5Sum([]byte("a chunk of file bytes"))
		b := MD5Sum([]byte("a chunk of file bytes"))
		c := MD5Sum([]byte("a chunk of file bytes!"))
		So(a, ShouldResemble, b)
		So(a, ShouldNotResemble, c)
	})
}
