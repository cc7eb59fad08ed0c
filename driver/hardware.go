package driver

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/usctl/oemcore/driver/dmaxfer"
)

// Register offsets into the command device's word-addressed command
// space. Each per-firing register is indexed by firing number
// (offset = base + firing*firingStride); firingStride is large enough
// that no two firings' registers overlap.
const (
	firingStride = 64

	regTxAperture        = 0x1000
	regTxDelays          = 0x2000
	regTxFrequency       = 0x3000
	regTxHalfPeriods     = 0x3100
	regTxInvert          = 0x3200
	regActiveChannelGrp  = 0x4000
	regRxAperture        = 0x5000
	regRxTime            = 0x5100
	regRxDelay           = 0x5200
	regTGCSamples        = 0x6000

	regNumberOfFirings = 0x7000
	regEnableTransmit  = 0x7001
	regEnableReceive   = 0x7002
	regNTriggers       = 0x7003

	regTriggerTable           = 0x8000
	regClearScheduledReceive  = 0x9000
	regScheduledReceiveTable  = 0x9100

	regTriggerStart = 0xA000
	regTriggerSync  = 0xA001
	regTriggerStop  = 0xA002

	regEnableHV    = 0xB000
	regHVVoltage   = 0xB001
	regPGAGain     = 0xB002
	regLPFCutoff   = 0xB003
	regTermination = 0xB004
	regLNAGain     = 0xB005
	regDTGCEnable  = 0xB006
	regTGCEnable   = 0xB007

	regTxChannelMap = 0xC000
	regRxChannelMap = 0xD000
)

// Hardware is the real-device OEM implementation: every command
// becomes a fixed-width register write to commandDevice, and
// TransferAllRXBuffersToHost pulls the OEM's DDR buffer through
// dmaxfer off rxDevice.
type Hardware struct {
	commandDevice string
	rxDevice      string
}

var _ OEM = (*Hardware)(nil)

// NewHardware opens no files itself; commandDevice and rxDevice are
// touched per call, matching the teacher's open-per-access PCIe
// register style rather than holding a file descriptor open across
// commands.
func NewHardware(commandDevice, rxDevice string) *Hardware {
	return &Hardware{commandDevice: commandDevice, rxDevice: rxDevice}
}

func (h *Hardware) writeReg(offset int, data uint32) error {
	f, err := os.OpenFile(h.commandDevice, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("could not open command device %s: %w", h.commandDevice, err)
	}
	defer f.Close()

	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, data)
	_, err = f.WriteAt(buf, int64(offset*4))
	return err
}

func (h *Hardware) writeRegFloat(offset int, data float64) error {
	return h.writeReg(offset, math.Float32bits(float32(data)))
}

func (h *Hardware) writeRegFloats(offset int, data []float64) error {
	for i, v := range data {
		if err := h.writeRegFloat(offset+i, v); err != nil {
			return err
		}
	}
	return nil
}

// writeRegString packs a hex/bit mask string as 32-bit little-endian
// chunks, padding with NUL bytes to a multiple of 4.
func (h *Hardware) writeRegString(offset int, data string) error {
	padded := data
	for len(padded)%4 != 0 {
		padded += "\x00"
	}
	for i := 0; i < len(padded); i += 4 {
		chunk := padded[i : i+4]
		var val uint32
		for j := 0; j < 4; j++ {
			val |= uint32(chunk[j]) << (j * 8)
		}
		if err := h.writeReg(offset+i/4, val); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hardware) writeChannelMap(offset int, rows [][]int) error {
	for i, row := range rows {
		for j, v := range row {
			if err := h.writeReg(offset+i*len(row)+j, uint32(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

func boolReg(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func (h *Hardware) SetTxAperture(mask string, firing int) error {
	return h.writeRegString(regTxAperture+firing*firingStride, mask)
}
func (h *Hardware) SetTxDelays(delays []float64, firing int) error {
	return h.writeRegFloats(regTxDelays+firing*firingStride, delays)
}
func (h *Hardware) SetTxFrequency(hz float64, firing int) error {
	return h.writeRegFloat(regTxFrequency+firing, hz)
}
func (h *Hardware) SetTxHalfPeriods(n int, firing int) error {
	return h.writeReg(regTxHalfPeriods+firing, uint32(n))
}
func (h *Hardware) SetTxInvert(invert int, firing int) error {
	return h.writeReg(regTxInvert+firing, uint32(invert))
}
func (h *Hardware) SetActiveChannelGroup(mask string, firing int) error {
	return h.writeRegString(regActiveChannelGrp+firing*firingStride, mask)
}
func (h *Hardware) SetRxAperture(mask string, firing int) error {
	return h.writeRegString(regRxAperture+firing*firingStride, mask)
}
func (h *Hardware) SetRxTime(seconds float64, firing int) error {
	return h.writeRegFloat(regRxTime+firing, seconds)
}
func (h *Hardware) SetRxDelay(seconds float64, firing int) error {
	return h.writeRegFloat(regRxDelay+firing, seconds)
}
func (h *Hardware) TGCSetSamples(curve []float64, firing int) error {
	return h.writeRegFloats(regTGCSamples+firing*firingStride, curve)
}

func (h *Hardware) SetNumberOfFirings(n int) error { return h.writeReg(regNumberOfFirings, uint32(n)) }
func (h *Hardware) EnableTransmit() error          { return h.writeReg(regEnableTransmit, 1) }
func (h *Hardware) EnableReceive() error           { return h.writeReg(regEnableReceive, 1) }

func (h *Hardware) SetNTriggers(n int) error { return h.writeReg(regNTriggers, uint32(n)) }
func (h *Hardware) SetTrigger(priUs float64, syncIn, syncOut int, idx int) error {
	base := regTriggerTable + idx*4
	if err := h.writeRegFloat(base, priUs); err != nil {
		return err
	}
	if err := h.writeReg(base+1, uint32(syncIn)); err != nil {
		return err
	}
	return h.writeReg(base+2, uint32(syncOut))
}

func (h *Hardware) ClearScheduledReceive() error {
	return h.writeReg(regClearScheduledReceive, 1)
}
func (h *Hardware) ScheduleReceive(offset, length, decimation, firstSample int) error {
	base := regScheduledReceiveTable + firstSample*4
	if err := h.writeReg(base, uint32(offset)); err != nil {
		return err
	}
	if err := h.writeReg(base+1, uint32(length)); err != nil {
		return err
	}
	return h.writeReg(base+2, uint32(decimation))
}

func (h *Hardware) TriggerStart() error { return h.writeReg(regTriggerStart, 1) }
func (h *Hardware) TriggerSync() error  { return h.writeReg(regTriggerSync, 1) }
func (h *Hardware) TriggerStop() error  { return h.writeReg(regTriggerStop, 1) }

// TransferAllRXBuffersToHost pulls nWords int16 samples off rxDevice
// through dmaxfer's tuned bulk-read path.
func (h *Hardware) TransferAllRXBuffersToHost(nWords int) ([]int16, error) {
	result, err := dmaxfer.Transfer(dmaxfer.Config{DevicePath: h.rxDevice, NWords: nWords})
	if err != nil {
		return nil, err
	}
	return result.Samples, nil
}

func (h *Hardware) EnableHV() error                  { return h.writeReg(regEnableHV, 1) }
func (h *Hardware) SetHVVoltage(volts float64) error { return h.writeRegFloat(regHVVoltage, volts) }

func (h *Hardware) SetPGAGain(db float64) error            { return h.writeRegFloat(regPGAGain, db) }
func (h *Hardware) SetLPFCutoff(hz float64) error          { return h.writeRegFloat(regLPFCutoff, hz) }
func (h *Hardware) SetActiveTermination(ohms float64) error { return h.writeRegFloat(regTermination, ohms) }
func (h *Hardware) SetLNAGain(db float64) error            { return h.writeRegFloat(regLNAGain, db) }
func (h *Hardware) SetDTGCEnable(enabled bool) error       { return h.writeReg(regDTGCEnable, boolReg(enabled)) }
func (h *Hardware) SetTGCEnable(enabled bool) error        { return h.writeReg(regTGCEnable, boolReg(enabled)) }
func (h *Hardware) ProgramChannelMap(tx, rx [][]int) error {
	if err := h.writeChannelMap(regTxChannelMap, tx); err != nil {
		return err
	}
	return h.writeChannelMap(regRxChannelMap, rx)
}
