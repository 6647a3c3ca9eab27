// Package gd32v brings up the GD32VF103 peripherals used by the Longan
// Nano serial echo firmware and runs its polling echo loop in Go.
//
// The package covers the three peripherals the echo program touches:
// the reset and clock unit (RCU), the GPIO ports and USART0. Register
// addresses, bit positions and bring-up ordering follow the bronzebeard
// assembly examples for the Longan Nano, so the sequences here are
// bit-exact with what the original firmware writes.
//
// All register access goes through the Bus interface. Production code
// backs it with a /dev/mem mapping (MemBus); tests and host-side runs
// back it with the simulated device in the gd32vsim package.
//
// Copyright (c) 2023 the bronzebeard authors.
//
// # Datasheets
//
// GD32VF103 user manual and datasheet:
// https://www.gigadevice.com/product/mcu/risc-v/gd32vf103
//
// Longan Nano schematic:
// https://dl.sipeed.com/LONGAN/Nano
package gd32v
