//go:build !unix

package handlers

import "errors"

func statDisk(string) (*diskInfo, error) {
	return nil, errors.New("ёмкость диска недоступна на этой платформе")
}
