package service

import (
	"context"
	"math/rand/v2"

	"github.com/cleberrangel/estimate-histogram-api/internal/config"
	"github.com/cleberrangel/estimate-histogram-api/internal/logger"
	"gonum.org/v1/gonum/stat/distuv"
)

// Intervalo de proposta fixo dos candidatos, independente do intervalo
// de saída [a, b]
const (
	proposalMin = -1.0
	proposalMax = 1.0

	// Cada lote carrega count/1000 candidatos (divisão inteira)
	batchDivisor = 1000

	// Semente constante do sorteio auxiliar do modo legacy
	legacyAuxSeed = 1
)

// SamplerService gera amostras aproximando uma normal padrão truncada
// no intervalo de proposta e remapeada para [a, b].
//
// Dois modos:
//
//   - legacy: reproduz o comportamento observável do protótipo de
//     gráfico que este serviço substitui. O sorteio de aceitação usa um
//     único valor auxiliar de semente constante e o resultado do teste
//     nunca filtra a saída, então o conjunto emitido é uniforme em
//     [a, b]. Mantido para comparação lado a lado com o protótipo.
//
//   - rejection: amostragem por rejeição de fato, com um sorteio
//     auxiliar novo por candidato contra a densidade normal padrão.
type SamplerService struct {
	mode   string
	normal distuv.Normal
}

// gonumSource adapta *rand.Rand ao contrato de fonte do gonum; as
// distribuições nunca chamam Seed quando recebem uma fonte explícita
type gonumSource struct{ *rand.Rand }

func (gonumSource) Seed(uint64) {}

// SampleResult contém as amostras e as estatísticas da rodada
type SampleResult struct {
	Values     []float64
	Candidates int
	Accepted   int
	Batches    int
	BatchSize  int
}

// NewSamplerService cria um sampler no modo informado
func NewSamplerService(mode string) *SamplerService {
	return &SamplerService{
		mode:   mode,
		normal: distuv.Normal{Mu: 0, Sigma: 1},
	}
}

// Mode devolve o modo de amostragem ativo
func (s *SamplerService) Mode() string {
	return s.mode
}

// Sample gera aproximadamente count amostras em [a, b]. A partição em
// lotes trunca: o total emitido é (count/batchSize)*batchSize, que pode
// diferir de count. Para count < 1000 o tamanho de lote degeneraria em
// zero; ele é fixado em 1, emitindo exatamente count amostras.
func (s *SamplerService) Sample(ctx context.Context, count int, a, b float64, seed uint64) SampleResult {
	log := logger.Get(ctx)

	if count <= 0 {
		return SampleResult{Values: []float64{}}
	}

	batchSize := count / batchDivisor
	if batchSize < 1 {
		batchSize = 1
	}
	batches := count / batchSize

	src := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	proposal := distuv.Uniform{Min: proposalMin, Max: proposalMax, Src: gonumSource{src}}

	result := SampleResult{
		Values:    make([]float64, 0, batches*batchSize),
		Batches:   batches,
		BatchSize: batchSize,
	}

	switch s.mode {
	case config.SamplerModeRejection:
		s.sampleRejection(ctx, &result, proposal, src, a, b)
	default:
		s.sampleLegacy(ctx, &result, proposal, a, b)
	}

	log.Debug().
		Str("mode", s.mode).
		Int("requested", count).
		Int("emitted", len(result.Values)).
		Int("candidates", result.Candidates).
		Int("accepted", result.Accepted).
		Int("batches", batches).
		Int("batch_size", batchSize).
		Msg("Rodada de amostragem concluída")

	return result
}

// sampleLegacy emite todo candidato, aceito ou não. O limiar de
// aceitação vem de um único sorteio com semente constante; o teste é
// computado apenas para contabilizar a taxa de aceitação e não filtra
// nada.
func (s *SamplerService) sampleLegacy(ctx context.Context, result *SampleResult, proposal distuv.Uniform, a, b float64) {
	aux := rand.New(rand.NewPCG(legacyAuxSeed, legacyAuxSeed))
	threshold := distuv.Uniform{Min: 0, Max: s.normal.Prob(0), Src: gonumSource{aux}}.Rand()

	for i := 0; i < result.Batches; i++ {
		if cancelled(ctx) {
			return
		}
		for j := 0; j < result.BatchSize; j++ {
			x := proposal.Rand()
			result.Candidates++
			if threshold < s.normal.Prob(x) {
				result.Accepted++
			}
			result.Values = append(result.Values, remap(x, a, b))
		}
	}
}

// sampleRejection redraws candidatos até preencher cada lote, aceitando
// x com probabilidade φ(x)/φ(0)
func (s *SamplerService) sampleRejection(ctx context.Context, result *SampleResult, proposal distuv.Uniform, src *rand.Rand, a, b float64) {
	peak := s.normal.Prob(0)

	for i := 0; i < result.Batches; i++ {
		if cancelled(ctx) {
			return
		}
		for j := 0; j < result.BatchSize; j++ {
			for {
				x := proposal.Rand()
				result.Candidates++
				if src.Float64()*peak < s.normal.Prob(x) {
					result.Accepted++
					result.Values = append(result.Values, remap(x, a, b))
					break
				}
			}
		}
	}
}

// remap leva x do intervalo de proposta [-1, 1] para [a, b]
func remap(x, a, b float64) float64 {
	return a + (b-a)*(x-proposalMin)/(proposalMax-proposalMin)
}

func cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
