package headscroll_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/headscroll/internal/headscroll"
)

var _ = Describe("Controller", func() {
	var ctrl *headscroll.Controller

	BeforeEach(func() {
		var err error
		ctrl, err = headscroll.NewController(0.05, 25)
		Expect(err).NotTo(HaveOccurred())
	})

	decide := func(y float64) headscroll.Direction {
		d, err := ctrl.ProcessSample(headscroll.Point{X: 0.5, Y: y})
		Expect(err).NotTo(HaveOccurred())
		return d.Direction
	}

	It("starts from the midpoint baseline", func() {
		Expect(ctrl.Baseline()).To(Equal(headscroll.DefaultBaseline))
		Expect(ctrl.Calibrating()).To(BeFalse())
	})

	DescribeTable("dead zone around the default baseline",
		func(y float64, want headscroll.Direction) {
			Expect(decide(y)).To(Equal(want))
		},
		Entry("well below neutral scrolls down", 0.58, headscroll.Down),
		Entry("small drift is ignored", 0.52, headscroll.None),
		Entry("head raised scrolls up", 0.40, headscroll.Up),
		Entry("neutral", 0.50, headscroll.None),
		Entry("top of frame", 0.0, headscroll.Up),
		Entry("bottom of frame", 1.0, headscroll.Down),
	)

	Context("after a calibration request", func() {
		BeforeEach(func() {
			ctrl.RequestCalibration()
		})

		It("consumes exactly one sample", func() {
			Expect(decide(0.7)).To(Equal(headscroll.None))
			Expect(ctrl.Baseline()).To(Equal(0.7))
			Expect(ctrl.Calibrating()).To(BeFalse())

			Expect(decide(0.72)).To(Equal(headscroll.None))
			Expect(decide(0.80)).To(Equal(headscroll.Down))
			Expect(decide(0.60)).To(Equal(headscroll.Up))
		})

		It("never scrolls on the calibration frame", func() {
			Expect(decide(0.99)).To(Equal(headscroll.None))
		})

		It("collapses repeated requests into one", func() {
			ctrl.RequestCalibration()
			ctrl.RequestCalibration()

			Expect(decide(0.3)).To(Equal(headscroll.None))
			Expect(decide(0.45)).To(Equal(headscroll.Down))
			Expect(ctrl.Baseline()).To(Equal(0.3))
		})
	})

	It("rejects samples outside the frame without touching state", func() {
		ctrl.RequestCalibration()
		_, err := ctrl.ProcessSample(headscroll.Point{Y: 1.5})
		Expect(err).To(MatchError(headscroll.ErrSampleOutOfRange))
		Expect(ctrl.Calibrating()).To(BeTrue())
		Expect(ctrl.Baseline()).To(Equal(headscroll.DefaultBaseline))
	})

	It("uses a fixed magnitude regardless of offset size", func() {
		near, _ := ctrl.ProcessSample(headscroll.Point{Y: 0.56})
		far, _ := ctrl.ProcessSample(headscroll.Point{Y: 0.95})
		Expect(near.Magnitude).To(Equal(far.Magnitude))
		Expect(far.Offset()).To(BeNumerically("==", 25))
	})
})
