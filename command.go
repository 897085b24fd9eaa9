package aqm1248a

import "fmt"

// Command is a controller opcode. Opcodes marked as a base are combined with
// a parameter in their low bits.
type Command byte

// Controller opcodes.
const (
	CmdColumnLow           Command = 0x00 // base, low nibble of the column address
	CmdElectronicVolume    Command = 0x00 // base, second byte of the volume sequence
	CmdColumnHigh          Command = 0x10 // base, high nibble of the column address
	CmdRegisterRatio       Command = 0x20 // base, voltage regulator ratio 0-7
	CmdPowerControl1       Command = 0x2C // booster on
	CmdPowerControl2       Command = 0x2E // regulator on
	CmdPowerControl3       Command = 0x2F // follower on
	CmdStartLine           Command = 0x40 // base, display start line 0-63
	CmdElectronicVolumeSet Command = 0x81 // followed by the volume byte
	CmdScanNormal          Command = 0xA0 // ADC select normal
	CmdScanReverse         Command = 0xA1 // ADC select reverse
	CmdBias1_9             Command = 0xA2
	CmdBias1_7             Command = 0xA3
	CmdAllPointsNormal     Command = 0xA4
	CmdAllPointsOn         Command = 0xA5
	CmdDisplayNormal       Command = 0xA6
	CmdDisplayReverse      Command = 0xA7
	CmdSetSleep            Command = 0xAB
	CmdSetNormal           Command = 0xAC
	CmdDisplayOff          Command = 0xAE
	CmdDisplayOn           Command = 0xAF
	CmdPageAddress         Command = 0xB0 // base, page address 0-15
	CmdCommonOutputNormal  Command = 0xC0
	CmdCommonOutputReverse Command = 0xC8
	CmdInternalReset       Command = 0xE2
)

// Parameter masks for the base opcodes.
const (
	maxRatio     = 0x07
	maxVolume    = 0x3F
	maxPage      = 0x0F
	maxStartLine = 0x3F
)

var commandNames = map[Command]string{
	CmdColumnLow:           "column low",
	CmdColumnHigh:          "column high",
	CmdRegisterRatio:       "register ratio",
	CmdPowerControl1:       "power control 1",
	CmdPowerControl2:       "power control 2",
	CmdPowerControl3:       "power control 3",
	CmdStartLine:           "start line",
	CmdElectronicVolumeSet: "electronic volume set",
	CmdScanNormal:          "scan normal",
	CmdScanReverse:         "scan reverse",
	CmdBias1_9:             "bias 1/9",
	CmdBias1_7:             "bias 1/7",
	CmdAllPointsNormal:     "all points normal",
	CmdAllPointsOn:         "all points on",
	CmdDisplayNormal:       "display normal",
	CmdDisplayReverse:      "display reverse",
	CmdSetSleep:            "sleep mode",
	CmdSetNormal:           "normal mode",
	CmdDisplayOff:          "display off",
	CmdDisplayOn:           "display on",
	CmdPageAddress:         "page address",
	CmdCommonOutputNormal:  "common output normal",
	CmdCommonOutputReverse: "common output reverse",
	CmdInternalReset:       "internal reset",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(%#02x)", byte(c))
}

// With returns the opcode byte for a base opcode combined with param.
func (c Command) With(param byte) byte {
	return byte(c) | param
}
