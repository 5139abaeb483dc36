// Package hashing calculates MD5 checksums of data streams as they are read.
//
// It is used to record a checksum next to the downloaded feed so unchanged
// content is not rewritten on disk:
//
//	proxy := hashing.NewMD5ReaderProxy(resp.Body)
//	_ = utils.WriteFileAtomic(path, proxy, 0644)
//	checksum, _ := proxy.GetChecksum()
package hashing
