package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: board name (same value placed in ctx under CtxDeviceKey)
// Val: raw YAML for that board
// -----------------------------------------------------------------------------

const cfgHostSim = `
board: host-sim
sampling:
  frequency_hz: 16
sensors: [accelerometer, gyroscope, pressure]
initial_mode: aw
serial:
  port: ""
  baud: 115200
  send_timeout: 255ms
sensor_bus:
  kind: synthetic
  synthetic:
    loop: true
    segments:
      - { duration: 8s,  gravity: [0, 0, 1000],   pressure: 101325 }
      - { duration: 10s, gravity: [0, -980, 150], step_hz: 1.8, amplitude: 250, pressure: 101320 }
      - { duration: 6s,  gravity: [0, -950, 250], step_hz: 2.8, amplitude: 700, pressure: 101318 }
      - { duration: 12s, gravity: [980, 0, 150],  pressure: 101330 }
      - { duration: 4s,  gravity: [0, 0, -1000],  pressure: 101330 }
button:
  pin: -1
led:
  pin: -1
log:
  level: info
`

const cfgPico = `
board: pico
sampling:
  frequency_hz: 16
sensors: [accelerometer, gyroscope, pressure]
initial_mode: aw
serial:
  port: uart0
  baud: 115200
  send_timeout: 255ms
sensor_bus:
  kind: i2c
  i2c:
    bus: i2c0
    imu_addr: 0x6A
    pressure_addr: 0x5C
    humidity_addr: 0x38
button:
  pin: 15
  active_low: true
  debounce: 50ms
led:
  pin: 25
log:
  level: info
`

const cfgModbusBench = `
board: modbus-bench
sampling:
  frequency_hz: 16
sensors: [accelerometer, pressure]
initial_mode: aw
serial:
  port: /dev/ttyACM0
  baud: 115200
  send_timeout: 255ms
sensor_bus:
  kind: modbus
  modbus:
    port: /dev/ttyUSB0
    baud: 19200
    slave_id: 1
    timeout: 100ms
    accel_reg: 0
    pressure_reg: 3
button:
  pin: -1
led:
  pin: -1
log:
  level: info
`

var embeddedConfigs = map[string][]byte{
	"host-sim":     []byte(cfgHostSim),
	"pico":         []byte(cfgPico),
	"modbus-bench": []byte(cfgModbusBench),
}
