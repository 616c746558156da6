package items

import (
	"errors"
	"strings"
)

func (s *Service) validate(item Item) error {
	if strings.TrimSpace(item.Code) == "" {
		return errors.New("item code is required")
	}
	if strings.TrimSpace(item.Name) == "" {
		return errors.New("item name is required")
	}
	if item.StandardPrice < 0 {
		return errors.New("standard price must not be negative")
	}
	return nil
}
