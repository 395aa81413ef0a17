package mock

import (
	"math"

	"github.com/jonwraymond/h5core/entity"
)

// SampleFilepath is the file name reported for the sample hierarchy.
const SampleFilepath = "sample.h5"

// NewSample returns a source preloaded with a small NeXus-like file:
//
//	/entities/...          scalars, an empty group and an external link
//	/nD_datasets/oneD      [41] int
//	/nD_datasets/twoD      [20 41] int
//	/nD_datasets/threeD    [9 20 41] int
//	/nexus_entry/image     [3 9 20 41] float, interpretation=image
//	/nexus_entry/spectrum  [20 41] float, interpretation=spectrum
//	/nexus_entry/rgb       [4 5 3] uint8, CLASS=IMAGE
func NewSample(opts ...Option) *Source {
	s := New(opts...)
	i32 := entity.IntType(32, entity.LittleEndian)
	f64 := entity.FloatType(64, entity.LittleEndian)

	must(s.AddGroup("/entities", nil))
	must(s.AddGroup("/entities/empty_group", nil))
	must(s.AddLink("/entities/external_link", entity.Link{Class: entity.LinkExternal, File: "my_file", Path: "entry_000/dataset"}))
	must(s.AddDataset("/entities/scalar_int", entity.ScalarShape(), i32, 0, nil))
	must(s.AddDataset("/entities/scalar_str", entity.ScalarShape(), entity.StrType("UTF-8", 0), "foo", nil))
	must(s.AddDataset("/entities/scalar_bool", entity.ScalarShape(), entity.BoolType(), true, nil))

	must(s.AddGroup("/nD_datasets", nil))
	must(s.AddDataset("/nD_datasets/oneD", entity.Shape{41}, i32, fringes(41), nil))
	must(s.AddDataset("/nD_datasets/twoD", entity.Shape{20, 41}, i32, fringes(20, 41), nil))
	must(s.AddDataset("/nD_datasets/threeD", entity.Shape{9, 20, 41}, i32, fringes(9, 20, 41), nil))

	must(s.AddGroup("/nexus_entry", Attrs{"NX_class": "NXentry", "default": "image"}))
	must(s.AddDataset("/nexus_entry/image", entity.Shape{3, 9, 20, 41}, f64, wave(3, 9, 20, 41),
		Attrs{"interpretation": "image", "long_name": "Interference fringes"}))
	must(s.AddDataset("/nexus_entry/spectrum", entity.Shape{20, 41}, f64, wave(20, 41),
		Attrs{"interpretation": "spectrum", "units": "arb. units"}))
	must(s.AddDataset("/nexus_entry/rgb", entity.Shape{4, 5, 3}, entity.UintType(8, entity.LittleEndian), ramp(4*5*3),
		Attrs{"CLASS": "IMAGE"}))

	return s
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func size(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// fringes fills an int32 buffer with an integer pattern along the last dim.
func fringes(shape ...int) []int32 {
	n := size(shape)
	last := shape[len(shape)-1]
	out := make([]int32, n)
	for i := range out {
		x := float64(i%last) - float64(last)/2
		row := float64(i / last)
		out[i] = int32(math.Round(x*x*math.Cos(row/3) + row))
	}
	return out
}

// wave fills a float64 buffer with a smooth signal crossing zero.
func wave(shape ...int) []float64 {
	n := size(shape)
	last := shape[len(shape)-1]
	out := make([]float64, n)
	for i := range out {
		x := float64(i%last) / float64(last)
		out[i] = math.Sin(2*math.Pi*x) * (1 + float64(i/last)/10)
	}
	return out
}

func ramp(n int) []uint8 {
	out := make([]uint8, n)
	for i := range out {
		out[i] = uint8(i * 4)
	}
	return out
}
