// Package address decodes and validates Ergo addresses.
package address

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// Network is the network byte prefix of an address
type Network byte

const (
	Mainnet Network = 0x00
	Testnet Network = 0x10
)

// Type is the address type encoded in the low bits of the prefix
type Type byte

const (
	P2PK Type = 0x01
	P2SH Type = 0x02
	P2S  Type = 0x03
)

const (
	checksumLen  = 4
	p2pkKeyLen   = 33
	p2shHashLen  = 24
	minDecodeLen = 1 + checksumLen + 1
)

var (
	ErrInvalidEncoding = errors.New("address is not valid base58")
	ErrInvalidChecksum = errors.New("address checksum mismatch")
	ErrWrongNetwork    = errors.New("address belongs to another network")
)

// Address is a decoded Ergo address
type Address struct {
	Network Network
	Type    Type
	Content []byte
	raw     string
}

func (a Address) String() string {
	return a.raw
}

// ParseNetwork maps a config value to a network prefix
func ParseNetwork(name string) (Network, error) {
	switch name {
	case "mainnet", "":
		return Mainnet, nil
	case "testnet":
		return Testnet, nil
	}
	return 0, fmt.Errorf("unknown network %q", name)
}

// Decode parses an address and verifies its blake2b256 checksum
func Decode(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil || len(raw) < minDecodeLen {
		return Address{}, ErrInvalidEncoding
	}

	body := raw[:len(raw)-checksumLen]
	sum := blake2b.Sum256(body)
	if !bytes.Equal(sum[:checksumLen], raw[len(raw)-checksumLen:]) {
		return Address{}, ErrInvalidChecksum
	}

	prefix := body[0]
	addr := Address{
		Network: Network(prefix & 0xF0),
		Type:    Type(prefix & 0x0F),
		Content: body[1:],
		raw:     s,
	}

	switch addr.Type {
	case P2PK:
		if len(addr.Content) != p2pkKeyLen {
			return Address{}, fmt.Errorf("p2pk address content is %d bytes, expected %d", len(addr.Content), p2pkKeyLen)
		}
	case P2SH:
		if len(addr.Content) != p2shHashLen {
			return Address{}, fmt.Errorf("p2sh address content is %d bytes, expected %d", len(addr.Content), p2shHashLen)
		}
	case P2S:
	default:
		return Address{}, fmt.Errorf("unknown address type %d", addr.Type)
	}
	return addr, nil
}

// Validate decodes s and checks it belongs to network
func Validate(s string, network Network) error {
	addr, err := Decode(s)
	if err != nil {
		return err
	}
	if addr.Network != network {
		return ErrWrongNetwork
	}
	return nil
}

// Encode builds the string form of an address from its parts
func Encode(network Network, typ Type, content []byte) string {
	body := make([]byte, 0, 1+len(content)+checksumLen)
	body = append(body, byte(network)|byte(typ))
	body = append(body, content...)
	sum := blake2b.Sum256(body)
	return base58.Encode(append(body, sum[:checksumLen]...))
}
