package feed

import (
	"errors"
	"io"
	"os"

	"github.com/maksimkurb/keen-threatfeed/src/internal/hashing"
	"github.com/maksimkurb/keen-threatfeed/src/internal/log"
	"github.com/maksimkurb/keen-threatfeed/src/internal/utils"
)

const checksumSuffix = ".md5"

// IsFileChanged compares the checksum of freshly read content with the
// checksum recorded next to filePath. A missing file or checksum counts as changed.
func IsFileChanged(checksumProxy hashing.ChecksumProvider, filePath string) (bool, error) {
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return true, nil
	}

	md5, err := checksumProxy.GetChecksum()
	if err != nil {
		return false, err
	}

	checksumFilePath := filePath + checksumSuffix
	checksum, err := readChecksum(checksumFilePath)
	if err != nil {
		log.Debugf("Failed to read checksum file '%s', assuming it's changed: %v", checksumFilePath, err)
		return true, nil
	}
	return string(checksum) != md5, nil
}

func readChecksum(checksumFilePath string) ([]byte, error) {
	checksumFile, err := os.Open(checksumFilePath)
	if err != nil {
		return nil, err
	}
	defer utils.CloseOrWarn(checksumFile)

	return io.ReadAll(checksumFile)
}

func WriteChecksum(checksumProxy hashing.ChecksumProvider, filePath string) error {
	checksum, err := checksumProxy.GetChecksum()
	if err != nil {
		return err
	}
	return os.WriteFile(filePath+checksumSuffix, []byte(checksum), 0644)
}
