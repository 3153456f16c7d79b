/*
Package dump provides file-based snapshots of the token state.

Snapshot is identified by the label and consists of two files in the directory:

	'<label>-token.json': JSON object with public token info
	'<label>-storage.csv': CSV of raw storage items

Storage CSV records are 'key,value' where binary key and value are
base64-encoded. Snapshots are written with Creator and read with Open.
*/
package dump
