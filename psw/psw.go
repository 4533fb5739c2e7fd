package psw

/**
Status register package (R2 on the MSP430 family)
*/

// status register layout. Values here are bits, not the
// powers of 2
const (
	cFlag      = 0
	zFlag      = 1
	nFlag      = 2
	gieFlag    = 3
	cpuOffFlag = 4
	oscOffFlag = 5
	scg0Flag   = 6
	scg1Flag   = 7
	vFlag      = 8
)

// GIE is the general interrupt enable mask, as it is stored in a saved frame
const GIE = 1 << gieFlag

// CPUOFF mask - set when the cpu sleeps in a low power mode
const CPUOFF = 1 << cpuOffFlag

// Mask covers every bit the status register implements. The upper bits of a
// saved interrupt frame word belong to the program counter.
const Mask = 0x01ff

// PSW keeps processor status word
type PSW uint16

// Get returns current processor status word
func (psw *PSW) Get() uint16 {
	return uint16(*psw)
}

// Set PSW value. Bits the register doesn't implement are dropped.
func (psw *PSW) Set(p uint16) {
	*psw = PSW(p & Mask)
}

// GIE reports if maskable interrupts are enabled
func (psw *PSW) GIE() bool {
	return psw.getFlag(gieFlag)
}

// SetGIE enables or disables maskable interrupts
func (psw *PSW) SetGIE(status bool) {
	psw.setFlag(gieFlag, status)
}

// CPUOff returns the low power flag
func (psw *PSW) CPUOff() bool {
	return psw.getFlag(cpuOffFlag)
}

// SetCPUOff sets the low power flag
func (psw *PSW) SetCPUOff(status bool) {
	psw.setFlag(cpuOffFlag, status)
}

// OscOff returns the oscillator off flag
func (psw *PSW) OscOff() bool {
	return psw.getFlag(oscOffFlag)
}

// SCG0 returns system clock generator 0 flag
func (psw *PSW) SCG0() bool {
	return psw.getFlag(scg0Flag)
}

// SCG1 returns system clock generator 1 flag
func (psw *PSW) SCG1() bool {
	return psw.getFlag(scg1Flag)
}

// C returns C flag:
func (psw *PSW) C() bool {
	return psw.getFlag(cFlag)
}

// SetC sets C flag
func (psw *PSW) SetC(status bool) {
	psw.setFlag(cFlag, status)
}

// V returns v flag
func (psw *PSW) V() bool {
	return psw.getFlag(vFlag)
}

// SetV sets processor V flag
func (psw *PSW) SetV(status bool) {
	psw.setFlag(vFlag, status)
}

// Z returns Z flag
func (psw *PSW) Z() bool {
	return psw.getFlag(zFlag)
}

// SetZ sets processor Z flag
func (psw *PSW) SetZ(status bool) {
	psw.setFlag(zFlag, status)
}

// N returns N flag
func (psw *PSW) N() bool {
	return psw.getFlag(nFlag)
}

// SetN sets processor N flag
func (psw *PSW) SetN(status bool) {
	psw.setFlag(nFlag, status)
}

// generic get flag function
func (psw *PSW) getFlag(flag uint) bool {
	return (*psw & (1 << flag)) > 0
}

// generic set flag function
func (psw *PSW) setFlag(flag uint, status bool) {
	if status {
		*psw |= (1 << flag)
	} else {
		*psw &^= (1 << flag)
	}
}

// GetFlags returns set flags
func (psw *PSW) GetFlags() string {
	var flags string
	if psw.GIE() {
		flags = "G"
	} else {
		flags = " "
	}
	if psw.CPUOff() {
		flags += "O"
	} else {
		flags += " "
	}
	if psw.N() {
		flags += "N"
	} else {
		flags += " "
	}
	if psw.Z() {
		flags += "Z"
	} else {
		flags += " "
	}
	if psw.V() {
		flags += "V"
	} else {
		flags += " "
	}
	if psw.C() {
		flags += "C"
	} else {
		flags += " "
	}
	return "[" + flags + "]"
}
