// Package utils provides small file and path helpers for keen-threatfeed.
//
// Path resolution:
//
//	absPath := utils.GetAbsolutePath("lists/malicious_ips.txt", "/etc/keen-threatfeed")
//	// Returns: /etc/keen-threatfeed/lists/malicious_ips.txt
//
// Atomic replacement of a file from a stream:
//
//	err := utils.WriteFileAtomic(path, resp.Body, 0644)
package utils
