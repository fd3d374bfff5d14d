package reopenx

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
)

// assert 在条件为 false 时报告失败并终止当前测试。
func assert(condition bool, t testing.TB, msg string, v ...interface{}) {
	assertUp(condition, t, 1, msg, v...)
}

// assertUp 与 assert 类似，但用于辅助函数内部，确保失败报告的文件和行号对应调用栈中更高层级。
func assertUp(condition bool, t testing.TB, caller int, msg string, v ...interface{}) {
	if !condition {
		_, file, line, _ := runtime.Caller(caller + 1)
		v = append([]interface{}{filepath.Base(file), line}, v...)
		t.Fatalf("%s:%d: "+msg, v...)
	}
}

// equals 根据 reflect.DeepEqual 测试两个值是否相等。
func equals(exp, act interface{}, t testing.TB) {
	equalsUp(exp, act, t, 1)
}

func equalsUp(exp, act interface{}, t testing.TB, caller int) {
	if !reflect.DeepEqual(exp, act) {
		_, file, line, _ := runtime.Caller(caller + 1)
		t.Fatalf("%s:%d: exp: %v (%T), got: %v (%T)",
			filepath.Base(file), line, exp, exp, act, act)
	}
}

// isNil 在给定值不为 nil 时报告失败。
func isNil(obtained interface{}, t testing.TB) {
	if !_isNil(obtained) {
		_, file, line, _ := runtime.Caller(1)
		t.Fatalf("%s:%d: expected nil, got: %v", filepath.Base(file), line, obtained)
	}
}

// notNil 在给定值为 nil 时报告失败。
func notNil(obtained interface{}, t testing.TB) {
	if _isNil(obtained) {
		_, file, line, _ := runtime.Caller(1)
		t.Fatalf("%s:%d: expected non-nil, got: %v", filepath.Base(file), line, obtained)
	}
}

// errorIs 在 err 不包装 target 时报告失败。
func errorIs(err, target error, t testing.TB) {
	if !errors.Is(err, target) {
		_, file, line, _ := runtime.Caller(1)
		t.Fatalf("%s:%d: expected error wrapping %v, got: %v", filepath.Base(file), line, target, err)
	}
}

// _isNil 是 isNil 和 notNil 的辅助函数，不应直接使用。
func _isNil(obtained interface{}) bool {
	if obtained == nil {
		return true
	}

	switch v := reflect.ValueOf(obtained); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}

	return false
}

// existsWithContent 检查文件存在且内容与 exp 一致。
func existsWithContent(path string, exp []byte, t testing.TB) {
	b, err := os.ReadFile(path)
	if err != nil {
		_, file, line, _ := runtime.Caller(1)
		t.Fatalf("%s:%d: read %s: %v", filepath.Base(file), line, path, err)
	}
	equalsUp(string(exp), string(b), t, 1)
}
