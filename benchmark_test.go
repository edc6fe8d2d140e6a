package inject_test

import (
	"reflect"
	"testing"

	"github.com/junioryono/inject"
	"github.com/prometheus/client_golang/prometheus"
)

// Benchmark service types
type BenchDep1 struct{ Value int }
type BenchDep2 struct{ Value int }
type BenchDep3 struct{ Value int }

type BenchServiceWith3Deps struct {
	Dep1 *BenchDep1
	Dep2 *BenchDep2
	Dep3 *BenchDep3
}

func NewBenchDep1() *BenchDep1 { return &BenchDep1{Value: 1} }
func NewBenchDep2() *BenchDep2 { return &BenchDep2{Value: 2} }
func NewBenchDep3() *BenchDep3 { return &BenchDep3{Value: 3} }

func NewBenchServiceWith3Deps(dep1 *BenchDep1, dep2 *BenchDep2, dep3 *BenchDep3) *BenchServiceWith3Deps {
	return &BenchServiceWith3Deps{Dep1: dep1, Dep2: dep2, Dep3: dep3}
}

func benchInjector(b *testing.B, lifetime inject.Lifetime, opts ...inject.Option) *inject.Injector {
	b.Helper()

	inj, err := inject.New(opts...)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { inj.Close() })

	with := inject.WithLifetime(lifetime)
	for _, reg := range []struct {
		iface reflect.Type
		ctor  any
	}{
		{reflect.TypeFor[*BenchDep1](), NewBenchDep1},
		{reflect.TypeFor[*BenchDep2](), NewBenchDep2},
		{reflect.TypeFor[*BenchDep3](), NewBenchDep3},
		{reflect.TypeFor[*BenchServiceWith3Deps](), NewBenchServiceWith3Deps},
	} {
		if err := inj.Register(reg.iface, reg.ctor, with); err != nil {
			b.Fatal(err)
		}
	}
	return inj
}

func BenchmarkRegister(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		inj, _ := inject.New()
		inject.RegisterSingleton[*BenchDep1](inj, NewBenchDep1)
		inject.RegisterScoped[*BenchServiceWith3Deps](inj, NewBenchServiceWith3Deps)
	}
}

func BenchmarkResolve_Singleton(b *testing.B) {
	inj := benchInjector(b, inject.Singleton)
	inject.MustResolve[*BenchServiceWith3Deps](inj)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = inject.MustResolve[*BenchServiceWith3Deps](inj)
	}
}

func BenchmarkResolve_Scoped(b *testing.B) {
	inj := benchInjector(b, inject.Scoped)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = inject.MustResolve[*BenchServiceWith3Deps](inj)
	}
}

func BenchmarkResolve_ScopedWithMetrics(b *testing.B) {
	inj := benchInjector(b, inject.Scoped, inject.WithMetrics(prometheus.NewRegistry()))

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = inject.MustResolve[*BenchServiceWith3Deps](inj)
	}
}

func BenchmarkResolve_Concurrent(b *testing.B) {
	inj := benchInjector(b, inject.Singleton)
	inject.MustResolve[*BenchServiceWith3Deps](inj)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = inject.MustResolve[*BenchServiceWith3Deps](inj)
		}
	})
}

func BenchmarkValidate(b *testing.B) {
	inj := benchInjector(b, inject.Scoped)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := inj.Validate(); err != nil {
			b.Fatal(err)
		}
	}
}
