package utils

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

var cryptoKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecryptMessage(t *testing.T) {
	encoded, err := EncryptMessage(cryptoKey, "hello homestay")
	assert.Nil(t, err)
	assert.NotEmpty(t, encoded)

	decoded, err := DecryptMessage(cryptoKey, encoded)
	assert.Nil(t, err)
	assert.Equal(t, "hello homestay", *decoded)
}

func TestDecryptMessageRejectsBadInput(t *testing.T) {
	t.Run("Should reject non-hex input", func(t *testing.T) {
		decoded, err := DecryptMessage(cryptoKey, "not hex at all")
		assert.NotNil(t, err)
		assert.Nil(t, decoded)
	})

	t.Run("Should reject a ciphertext shorter than the nonce", func(t *testing.T) {
		short := hex.EncodeToString([]byte("tiny"))
		decoded, err := DecryptMessage(cryptoKey, short)
		assert.NotNil(t, err)
		assert.Nil(t, decoded)
	})

	t.Run("Should reject a tampered ciphertext", func(t *testing.T) {
		encoded, err := EncryptMessage(cryptoKey, "hello homestay")
		assert.Nil(t, err)
		raw, err := hex.DecodeString(encoded)
		assert.Nil(t, err)
		raw[len(raw)-1] ^= 0xff
		decoded, err := DecryptMessage(cryptoKey, hex.EncodeToString(raw))
		assert.NotNil(t, err)
		assert.Nil(t, decoded)
	})
}

func TestWithSuffix(t *testing.T) {
	t.Setenv("QUEUE_ENV_SUFFIX", "")
	assert.Equal(t, "OrdersToExpire", WithSuffix("OrdersToExpire"))

	t.Setenv("QUEUE_ENV_SUFFIX", "dev")
	assert.Equal(t, "OrdersToExpire_dev", WithSuffix("OrdersToExpire"))
}
