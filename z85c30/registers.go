package z85c30

// Register selectors. Write and read registers share the selector space; which one is
// reached depends on the direction of the access.
const (
	wr0  uint8 = 0x00
	wr1  uint8 = 0x01
	wr2  uint8 = 0x02
	wr3  uint8 = 0x03
	wr4  uint8 = 0x04
	wr5  uint8 = 0x05
	wr9  uint8 = 0x09
	wr10 uint8 = 0x0A
	wr11 uint8 = 0x0B
	wr12 uint8 = 0x0C
	wr13 uint8 = 0x0D
	wr14 uint8 = 0x0E
	wr15 uint8 = 0x0F

	rr0 uint8 = 0x00
	rr3 uint8 = 0x03
)

// WR0 commands
const (
	wr0ResetExtStatusInt uint8 = 0x10
	wr0ResetTxIntPending uint8 = 0x28
	wr0ErrorReset        uint8 = 0x30
	wr0ResetHighestIUS   uint8 = 0x38
	wr0ResetTxCRC        uint8 = 0x80
)

// WR1 interrupt enables
const (
	wr1ExtIntEnable uint8 = 0x01
	wr1TxIntEnable  uint8 = 0x02
	wr1IntAllRx     uint8 = 0x10
)

// WR3 receiver control
const (
	wr3RxEnable uint8 = 0x01
	wr3Rx8Bits  uint8 = 0xC0
)

// WR4 clock and format
const (
	wr4OneStop    uint8 = 0x04
	wr4Clock16    uint8 = 0x40
	wr4FormatBits uint8 = wr4OneStop | wr4Clock16
)

// WR5 transmitter and modem control. This register is write only, the driver keeps a shadow.
const (
	wr5RTS      uint8 = 0x02
	wr5TxEnable uint8 = 0x08
	wr5Tx8Bits  uint8 = 0x60
	wr5DTR      uint8 = 0x80
)

// WR9 master control, shared by both channels
const (
	wr9MIE      uint8 = 0x08
	wr9ChBReset uint8 = 0x40
	wr9ChAReset uint8 = 0x80
)

// WR11 clock mode
const (
	wr11TRxCOutBRG uint8 = 0x02
	wr11TRxCOutput uint8 = 0x04
	wr11TxClockBRG uint8 = 0x10
	wr11RxClockBRG uint8 = 0x40
)

// WR14 baud rate generator
const (
	wr14BRGEnable uint8 = 0x01
	wr14BRGSource uint8 = 0x02
	wr14Null      uint8 = 0x00
)

// WR15 external/status interrupt sources
const (
	wr15CTSIntEnable uint8 = 0x20
)

// RR0 status
const (
	rr0RxAvailable uint8 = 0x01
	rr0TxEmpty     uint8 = 0x04
	rr0CTS         uint8 = 0x20
)

// RR3 interrupt pending bits of channel B. Channel A uses the same bits shifted left by 3.
const (
	rr3ExtIP      uint8 = 0x01
	rr3TxIP       uint8 = 0x02
	rr3RxIP       uint8 = 0x04
	rr3ChannelA   uint8 = 3
	rr3ChannelMsk uint8 = 0x07
)

func txBufferEmpty(status uint8) bool {
	return status&rr0TxEmpty != 0
}

func rxCharAvailable(status uint8) bool {
	return status&rr0RxAvailable != 0
}

func ctsAsserted(status uint8) bool {
	return status&rr0CTS != 0
}

// channelPending extracts the pending bits of one channel from RR3
func channelPending(rr3 uint8, channelA bool) uint8 {
	if channelA {
		rr3 >>= rr3ChannelA
	}
	return rr3 & rr3ChannelMsk
}

// baudDivisor computes the baud rate generator time constant for a 16x clock. ok is false
// when the rate is not reachable with a 16 bit time constant.
func baudDivisor(clock uint32, baud uint32) (uint16, bool) {
	if clock == 0 || baud == 0 {
		return 0, false
	}

	div := uint64(clock) / (2 * 16 * uint64(baud))
	if div < 2 || div-2 > 0xFFFF {
		return 0, false
	}

	return uint16(div - 2), true
}
