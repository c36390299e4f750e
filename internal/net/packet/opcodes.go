package packet

// Client-to-server opcodes.
const (
	C_OPCODE_LOGIN              uint16 = 0x0003 // lobby hand-off: account + session key
	C_OPCODE_LOGOUT             uint16 = 0x0005
	C_OPCODE_ITEM_DROP          uint16 = 0x0025
	C_OPCODE_TRADE_REQUEST      uint16 = 0x0052
	C_OPCODE_TRADE_ACCEPT       uint16 = 0x0053
	C_OPCODE_TRADE_ADD_ITEM     uint16 = 0x0055
	C_OPCODE_TRADE_CANCEL       uint16 = 0x0059
	C_OPCODE_TRADE_FINISH       uint16 = 0x005B
	C_OPCODE_OBJECT_INTERACTION uint16 = 0x00BA
	C_OPCODE_PLASMA_START       uint16 = 0x02EB
	C_OPCODE_MITAMA_REUNION     uint16 = 0x0586
)

// Server-to-client opcodes.
const (
	S_OPCODE_LOGIN_RESPONSE uint16 = 0x0004
	S_OPCODE_LOGOUT         uint16 = 0x0006
	S_OPCODE_ERROR_ITEM     uint16 = 0x0026
	S_OPCODE_ITEM_BOX       uint16 = 0x0027
	S_OPCODE_TRADE_REQUEST  uint16 = 0x0054
	S_OPCODE_TRADE_ADDED    uint16 = 0x0056
	S_OPCODE_TRADE_FINISH   uint16 = 0x005C
	S_OPCODE_TRADE_FINISHED uint16 = 0x005D
	S_OPCODE_TRADE_ENDED    uint16 = 0x005E
	S_OPCODE_TRADE_ACCEPTED uint16 = 0x005F
	S_OPCODE_OBJECT_ACTION  uint16 = 0x00BB
	S_OPCODE_PLASMA_START   uint16 = 0x02EC
	S_OPCODE_MITAMA_REUNION uint16 = 0x0587
	S_OPCODE_DEMON_BOX      uint16 = 0x0588
)
