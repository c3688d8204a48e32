// Package protocol implements the command-buffer wire format used to talk to
// system services.
//
// A command buffer is an array of 64 little-endian 32-bit words. Word 0 is the
// header:
//
//	(command << 16) | (normal << 6) | translate
//
// where normal counts plain parameter words and translate counts handle or
// buffer translation words. Parameters follow the header in order. On reply
// the service writes its own result code into word 1.
//
// The only command modelled here is the process manager's launch-title call
// (command 0x1, five normal words, header 0x00010140):
//
//	word 0   header
//	word 1-4 ProgramInfo (16 bytes: u64 program id LE, u8 media type, 7 zero bytes)
//	word 5   LaunchFlags
//
// Fixed byte layouts are described by a Schema so that encode and decode
// share one definition of every field's offset, width and byte order.
package protocol
