package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNanoErgToErg(t *testing.T) {
	assert.Equal(t, "0.024981836", NanoErgToErg(24981836))
	assert.Equal(t, "1.000000000", NanoErgToErg(1_000_000_000))
	assert.Equal(t, "0.000000000", NanoErgToErg(0))
	assert.Equal(t, "-0.001000000", NanoErgToErg(-1_000_000))
}

func TestFormatTokenAmount(t *testing.T) {
	two := 2
	zero := 0
	assert.Equal(t, "12.34", FormatTokenAmount(1234, &two))
	assert.Equal(t, "0.05", FormatTokenAmount(5, &two))
	assert.Equal(t, "1234", FormatTokenAmount(1234, nil))
	assert.Equal(t, "1234", FormatTokenAmount(1234, &zero))
}
