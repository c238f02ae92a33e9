package record_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit/record"
)

var _ = Describe("CSVWriter", func() {
	var (
		dir  string
		path string
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "mab-csv")
		Expect(err).ToNot(HaveOccurred())
		path = filepath.Join(dir, "decisions.csv")
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("should round trip epochs through ReadCSV", func() {
		w, err := record.NewCSVWriter(path)
		Expect(err).ToNot(HaveOccurred())

		epochs := sampleEpochs(5)
		for _, e := range epochs {
			Expect(w.Write(e)).To(Succeed())
		}
		Expect(w.Close()).To(Succeed())

		got, err := record.ReadCSV(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal(epochs))
	})

	It("should write the header and sorted metrics", func() {
		w, err := record.NewCSVWriter(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(w.Write(sampleEpochs(1)[0])).To(Succeed())
		Expect(w.Close()).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(Equal(
			"epoch,arm,arm_name,reward,timestamp,fallback,metrics\n" +
				"0,0,none,0,1000,false,ipc=1;llc_mpki=2.5\n"))
	})

	It("should refuse to overwrite an existing file", func() {
		Expect(os.WriteFile(path, []byte("x"), 0o644)).To(Succeed())

		_, err := record.NewCSVWriter(path)
		Expect(err).To(MatchError(ContainSubstring("already exists")))
	})

	It("should reject out of order epochs", func() {
		w, err := record.NewCSVWriter(path)
		Expect(err).ToNot(HaveOccurred())
		defer w.Close()

		epochs := sampleEpochs(3)
		Expect(w.Write(epochs[0])).To(Succeed())
		Expect(w.Write(epochs[2])).To(MatchError(ContainSubstring("out of order")))
	})

	It("should reject writes after close", func() {
		w, err := record.NewCSVWriter(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(w.Close()).To(Succeed())
		Expect(w.Close()).To(Succeed())

		Expect(w.Write(sampleEpochs(1)[0])).To(MatchError(ContainSubstring("closed")))
	})

	It("should reject a file with a foreign header", func() {
		Expect(os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644)).To(Succeed())

		_, err := record.ReadCSV(path)
		Expect(err).To(MatchError(ContainSubstring("header")))
	})
})
