/*
NAME
  crc16.go

DESCRIPTION
  crc16.go implements the UIR container's CRC16 checksum: a nonstandard
  nibble-driven polynomial used for both the fixed header and, optionally,
  full slice-data integrity checks.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package uir

// crc16 computes the UIR container's CRC16 over buf, starting from the
// given running value (pass 0 for a fresh checksum). The algorithm
// processes one byte at a time through a nibble-split feedback network;
// it is not a standard CRC-16 variant (CCITT/ANSI), matching the UIR
// container format's own choice of checksum.
func crc16(buf []byte, crcIn uint16) uint16 {
	crc := ^crcIn
	for _, b := range buf {
		q := uint16(b) ^ (crc >> 8)
		k := (q >> 4) ^ q
		crc = (crc << 8) ^ k ^ (k << 5) ^ (k << 12)
	}
	return ^crc
}
