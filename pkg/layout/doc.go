/*
Package layout encodes scalar values into fixed-size memory slots and computes
aligned struct layouts.

All multi-byte values use the host byte order (binary.NativeEndian) so that a
region can be shared with code that views it as a native struct. Strings are
fixed-length, NUL padded byte arrays that always keep room for a terminator.
*/
package layout
