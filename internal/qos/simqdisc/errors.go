// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package simqdisc

import "grimm.is/flywall/internal/errors"

func errConfig(msg string) error {
	return errors.New(errors.KindInvalidConfig, msg)
}

func errConfigf(format string, args ...any) error {
	return errors.Errorf(errors.KindInvalidConfig, format, args...)
}
