package pkg

import (
	"fmt"
	"io"
	"os"
)

// CheckFileExist 检查文件是否存在
func CheckFileExist(filePath string) (bool, error) {
	_, err := os.Lstat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReadInput 读取输入文件，路径为空或 "-" 时读取 stdin
func ReadInput(filePath string, stdin io.Reader) ([]byte, error) {
	if filePath == "" || filePath == "-" {
		return io.ReadAll(stdin)
	}
	exist, err := CheckFileExist(filePath)
	if err != nil {
		return nil, fmt.Errorf("check file exist error: %w", err)
	}
	if !exist {
		return nil, fmt.Errorf("input file %q not exist", filePath)
	}
	return os.ReadFile(filePath)
}

// WriteOutput 写出结果，路径为空时写到 stdout
func WriteOutput(filePath string, stdout io.Writer, data []byte) error {
	if filePath == "" || filePath == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(filePath, data, 0o644)
}
