package doccrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"errors"
)

// legacyMagic prefixes the OpenSSL "salted" passphrase format that the
// first generation of the mobile app wrote (AES-256-CBC, key and IV from
// EVP_BytesToKey with MD5). Those documents stay readable; new documents
// are always written in the FGO1 format.
var legacyMagic = []byte("Salted__")

func openLegacy(raw, passphrase []byte) ([]byte, error) {
	if len(raw) < 16+aes.BlockSize || (len(raw)-16)%aes.BlockSize != 0 {
		return nil, errors.New("legacy ciphertext has invalid length")
	}
	salt := raw[8:16]
	body := raw[16:]

	key, iv := evpBytesToKey(passphrase, salt, 32, aes.BlockSize)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, body)
	return unpad(plain)
}

func evpBytesToKey(passphrase, salt []byte, keyLen, ivLen int) ([]byte, []byte) {
	var (
		out  []byte
		prev []byte
	)
	for len(out) < keyLen+ivLen {
		h := md5.New()
		h.Write(prev)
		h.Write(passphrase)
		h.Write(salt)
		prev = h.Sum(nil)
		out = append(out, prev...)
	}
	return out[:keyLen], out[keyLen : keyLen+ivLen]
}

func unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, errors.New("empty plaintext")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, errors.New("bad padding")
	}
	if !bytes.Equal(b[len(b)-n:], bytes.Repeat([]byte{byte(n)}, n)) {
		return nil, errors.New("bad padding")
	}
	return b[:len(b)-n], nil
}
