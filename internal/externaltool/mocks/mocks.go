// Package mocks provides gomock-generated-style mocks of the
// externaltool adapter interfaces, for adapter-boundary tests that must
// not shell out to a real javac/stripper/transpiler/closure-compiler.
// The step-worker and scheduler tests use their own hand-written fakes.
package mocks

import (
	"context"
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/vk/buildgraphgo/internal/externaltool"
)

// MockCompiler is a mock of the Compiler interface.
type MockCompiler struct {
	ctrl     *gomock.Controller
	recorder *MockCompilerMockRecorder
}

type MockCompilerMockRecorder struct {
	mock *MockCompiler
}

func NewMockCompiler(ctrl *gomock.Controller) *MockCompiler {
	m := &MockCompiler{ctrl: ctrl}
	m.recorder = &MockCompilerMockRecorder{m}
	return m
}

func (m *MockCompiler) EXPECT() *MockCompilerMockRecorder {
	return m.recorder
}

func (m *MockCompiler) Invoke(ctx context.Context, input externaltool.CompileInput) (externaltool.Result, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Invoke", ctx, input)
	ret0, _ := ret[0].(externaltool.Result)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockCompilerMockRecorder) Invoke(ctx, input interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Invoke", reflect.TypeOf((*MockCompiler)(nil).Invoke), ctx, input)
}

// MockStripper is a mock of the Stripper interface.
type MockStripper struct {
	ctrl     *gomock.Controller
	recorder *MockStripperMockRecorder
}

type MockStripperMockRecorder struct {
	mock *MockStripper
}

func NewMockStripper(ctrl *gomock.Controller) *MockStripper {
	m := &MockStripper{ctrl: ctrl}
	m.recorder = &MockStripperMockRecorder{m}
	return m
}

func (m *MockStripper) EXPECT() *MockStripperMockRecorder {
	return m.recorder
}

func (m *MockStripper) Invoke(ctx context.Context, input externaltool.StripInput) (externaltool.Result, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Invoke", ctx, input)
	ret0, _ := ret[0].(externaltool.Result)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockStripperMockRecorder) Invoke(ctx, input interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Invoke", reflect.TypeOf((*MockStripper)(nil).Invoke), ctx, input)
}

// MockTranspiler is a mock of the Transpiler interface.
type MockTranspiler struct {
	ctrl     *gomock.Controller
	recorder *MockTranspilerMockRecorder
}

type MockTranspilerMockRecorder struct {
	mock *MockTranspiler
}

func NewMockTranspiler(ctrl *gomock.Controller) *MockTranspiler {
	m := &MockTranspiler{ctrl: ctrl}
	m.recorder = &MockTranspilerMockRecorder{m}
	return m
}

func (m *MockTranspiler) EXPECT() *MockTranspilerMockRecorder {
	return m.recorder
}

func (m *MockTranspiler) Invoke(ctx context.Context, input externaltool.TranspileInput) (externaltool.Result, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Invoke", ctx, input)
	ret0, _ := ret[0].(externaltool.Result)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockTranspilerMockRecorder) Invoke(ctx, input interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Invoke", reflect.TypeOf((*MockTranspiler)(nil).Invoke), ctx, input)
}

// MockClosureOptimizer is a mock of the ClosureOptimizer interface.
type MockClosureOptimizer struct {
	ctrl     *gomock.Controller
	recorder *MockClosureOptimizerMockRecorder
}

type MockClosureOptimizerMockRecorder struct {
	mock *MockClosureOptimizer
}

func NewMockClosureOptimizer(ctrl *gomock.Controller) *MockClosureOptimizer {
	m := &MockClosureOptimizer{ctrl: ctrl}
	m.recorder = &MockClosureOptimizerMockRecorder{m}
	return m
}

func (m *MockClosureOptimizer) EXPECT() *MockClosureOptimizerMockRecorder {
	return m.recorder
}

func (m *MockClosureOptimizer) Invoke(ctx context.Context, input externaltool.ClosureInput) (externaltool.Result, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Invoke", ctx, input)
	ret0, _ := ret[0].(externaltool.Result)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockClosureOptimizerMockRecorder) Invoke(ctx, input interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Invoke", reflect.TypeOf((*MockClosureOptimizer)(nil).Invoke), ctx, input)
}
