package util

import (
	"fmt"
	"io"
	"os"

	"github.com/turbot/pipe-fittings/perr"
)

func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		err = os.MkdirAll(dir, 0755)
		if err != nil {
			return perr.InternalWithMessage(fmt.Sprintf("error creating directory %s", dir))
		}
	}
	return nil
}

// ReadInput reads the named file, or stdin when the name is empty or "-".
func ReadInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "" || name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, perr.BadRequestWithMessage("unable to read input: " + err.Error())
		}
		return data, nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, perr.BadRequestWithMessage(fmt.Sprintf("unable to read input file %s: %s", name, err))
	}
	return data, nil
}
