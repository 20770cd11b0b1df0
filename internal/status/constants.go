// internal/status/constants.go
package status

// Register block layout constants.
// These values define the mirrored layout and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of holding registers per device.
const SlotsPerDevice = 24

// ---- HEALTH SLOTS ----

// SlotHealthCode holds the device health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last exchange error code.
const SlotLastErrorCode = 1

// SlotSecondsInError holds the duration (in seconds) the device has been in error.
const SlotSecondsInError = 2

// ---- TELEMETRY SLOTS ----
// 32-bit values occupy two registers, high word first.

const SlotPresentVoltage = 3 // mV, 2 regs
const SlotPresentCurrent = 5 // mA
const SlotState = 6
const SlotMaxOutputVoltage = 7 // mV, 2 regs
const SlotOutputVoltage = 9    // mV, 2 regs

// TelemetryStart and TelemetrySlots bound the telemetry run.
const TelemetryStart = SlotPresentVoltage
const TelemetrySlots = SlotOutputVoltage + 2 - TelemetryStart

// ---- RESERVED RANGE ----

// Slots 11–15 are reserved for future use.
const SlotReservedStart = 11
const SlotReservedEnd = 15

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the block.
const SlotDeviceNameStart = 16

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// MaxSecondsInError is where the seconds counter saturates.
const MaxSecondsInError = 65535

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state, before the first poll.
const HealthUnknown uint16 = 0

// HealthOK represents a device answering polls.
const HealthOK uint16 = 1

// HealthError represents a failed poll.
const HealthError uint16 = 2
