package kcommon

import (
	"context"
	"fmt"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/klogging"
)

// TryCatchRun turns a panic inside fn into a returned *kerror.Kerror.
// Non-error panic values are wrapped as EC_INTERNAL_ERROR.
func TryCatchRun(ctx context.Context, fn func()) (ret *kerror.Kerror) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch v := r.(type) {
		case *kerror.Kerror:
			ret = v
		case error:
			ret = kerror.Wrap(v, "UnknownError", "", true).WithErrorCode(kerror.EC_INTERNAL_ERROR)
		default:
			klogging.Warning(ctx).WithPanic(r).Log("NonErrorPanic", "")
			ret = kerror.Create("NonErrorPanic", fmt.Sprintf("%v", r)).WithErrorCode(kerror.EC_INTERNAL_ERROR)
		}
	}()
	fn()
	return
}
