// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/hex"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
)

const AddressLen = 33

// Address represents the 33 byte address of a labmarket account
// (type byte followed by a 32 byte body).
type Address [AddressLen]byte

var EmptyAddress = Address{}

// CreateAddress returns [Address] made from concatenating
// [typeID] with [id].
func CreateAddress(typeID uint8, id ids.ID) Address {
	a := make([]byte, AddressLen)
	a[0] = typeID
	copy(a[1:], id[:])
	return Address(a)
}

// StringToAddress returns Address with bytes set to the hex decoding
// of s. It uses copy, which copies the minimum of either AddressLen or
// the length of the hex decoded string.
func StringToAddress(s string) Address {
	b, _ := hex.DecodeString(s)
	var a Address
	copy(a[:], b)
	return a
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// MarshalText returns the hex representation of a.
func (a Address) MarshalText() ([]byte, error) {
	result := make([]byte, len(a)*2+2)
	copy(result, `0x`)
	hex.Encode(result[2:], a[:])
	return result, nil
}

// UnmarshalText parses a hex-encoded address.
func (a *Address) UnmarshalText(input []byte) error {
	if len(input) >= 2 && input[0] == '0' && input[1] == 'x' {
		input = input[2:]
	}
	decoded, err := hex.DecodeString(string(input))
	if err != nil {
		return fmt.Errorf("failed to decode address: %w", err)
	}
	if len(decoded) != AddressLen {
		return fmt.Errorf("invalid address length: %d", len(decoded))
	}
	copy(a[:], decoded)
	return nil
}
